package cli

import (
	"os"
	"testing"

	"github.com/coinquest/coinquest/internal/daemon"
)

func TestConfigInit_WritesDefaults(t *testing.T) {
	t.Setenv("COINQUEST_HOME", t.TempDir())

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("config init: %v", err)
	}

	if _, err := os.Stat(daemon.ConfigPath()); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != daemon.DefaultConfig().API.Port {
		t.Errorf("API.Port = %d, want default %d", cfg.API.Port, daemon.DefaultConfig().API.Port)
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	t.Setenv("COINQUEST_HOME", t.TempDir())

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := runConfigInit(configInitCmd, nil); err == nil {
		t.Fatal("second init overwrote the config without --force")
	}

	configInitCmd.Flags().Set("force", "true")
	defer configInitCmd.Flags().Set("force", "false")
	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Errorf("forced init: %v", err)
	}
}
