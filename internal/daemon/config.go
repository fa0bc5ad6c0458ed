// Package daemon wires the CoinQuest services together and runs them
// behind the HTTP API.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, stored at ~/.coinquest/config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Data    DataConfig    `toml:"data"`
	AI      AIConfig      `toml:"ai"`
	Rewards RewardsConfig `toml:"rewards"`
	Wallet  WalletConfig  `toml:"wallet"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// DataConfig controls where state lives on disk.
type DataConfig struct {
	Dir string `toml:"dir"` // empty means <home>/data
}

// AIConfig controls the content provider.
type AIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"` // Go duration string
}

// RewardsConfig tunes the economy.
type RewardsConfig struct {
	XPDivisor        int64  `toml:"xp_divisor"`
	XPPerLevel       int64  `toml:"xp_per_level"`
	AdTicks          int    `toml:"ad_ticks"`
	AdTickInterval   string `toml:"ad_tick_interval"`
	WheelSpin        string `toml:"wheel_spin_duration"`
	VerifyDelay      string `toml:"verify_delay"`
	TapReward        int64  `toml:"tap_reward"`
	WatchReward      int64  `toml:"watch_reward"`
	TriviaBaseReward int64  `toml:"trivia_base_reward"`
	TriviaStreakStep int64  `toml:"trivia_streak_step"`
	TriviaDifficulty string `toml:"trivia_difficulty"`
	TriviaTopic      string `toml:"trivia_topic"`
}

// WalletConfig tunes the cash-out policy.
type WalletConfig struct {
	CoinsPerUSD  int64   `toml:"coins_per_usd"`
	MinPayoutUSD float64 `toml:"min_payout_usd"`
	FeePercent   float64 `toml:"fee_percent"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7420,
			Metrics: true,
		},
		Data: DataConfig{},
		AI: AIConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.5-flash",
			Timeout: "10s",
		},
		Rewards: RewardsConfig{
			XPDivisor:        5,
			XPPerLevel:       1000,
			AdTicks:          5,
			AdTickInterval:   "1s",
			WheelSpin:        "2s",
			VerifyDelay:      "1.5s",
			TapReward:        1,
			WatchReward:      25,
			TriviaBaseReward: 20,
			TriviaStreakStep: 5,
			TriviaDifficulty: "medium",
			TriviaTopic:      "general knowledge",
		},
		Wallet: WalletConfig{
			CoinsPerUSD:  1000,
			MinPayoutUSD: 10.00,
			FeePercent:   2.0,
		},
	}
}

// Home returns the CoinQuest home directory.
func Home() string {
	if env := os.Getenv("COINQUEST_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coinquest")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}

// DataDir resolves the state directory for this config.
func (c Config) DataDir() string {
	if c.Data.Dir != "" {
		return c.Data.Dir
	}
	return filepath.Join(Home(), "data")
}

// LoadConfig reads the config file, falling back to defaults when it does
// not exist. Values missing from the file keep their defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the config file, creating the home directory if needed.
func SaveConfig(cfg Config) error {
	if err := os.MkdirAll(Home(), 0700); err != nil {
		return fmt.Errorf("create home: %w", err)
	}

	f, err := os.Create(ConfigPath())
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// parseDuration parses a duration string, returning fallback on empty or
// malformed input.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
