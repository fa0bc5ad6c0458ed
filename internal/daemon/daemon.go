package daemon

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coinquest/coinquest/internal/api"
	"github.com/coinquest/coinquest/internal/app/adgate"
	"github.com/coinquest/coinquest/internal/app/arcade"
	"github.com/coinquest/coinquest/internal/app/ledger"
	"github.com/coinquest/coinquest/internal/app/tasks"
	"github.com/coinquest/coinquest/internal/domain"
	"github.com/coinquest/coinquest/internal/infra/ai"
	"github.com/coinquest/coinquest/internal/infra/observability"
	"github.com/coinquest/coinquest/internal/infra/store"
)

// Daemon owns the assembled services and the HTTP server.
type Daemon struct {
	cfg    Config
	store  *store.Store
	ledger *ledger.Ledger
	server *api.Server
	http   *http.Server
}

// New assembles the full service graph from config.
func New(cfg Config) (*Daemon, error) {
	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	lcfg := ledger.DefaultConfig()
	if cfg.Rewards.XPDivisor > 0 {
		lcfg.XPDivisor = cfg.Rewards.XPDivisor
	}
	if cfg.Rewards.XPPerLevel > 0 {
		lcfg.XPPerLevel = cfg.Rewards.XPPerLevel
	}
	led := ledger.Open(lcfg, st)

	acfg := ai.DefaultConfig()
	if cfg.AI.BaseURL != "" {
		acfg.BaseURL = cfg.AI.BaseURL
	}
	acfg.APIKey = cfg.AI.APIKey
	if cfg.AI.Model != "" {
		acfg.Model = cfg.AI.Model
	}
	acfg.Timeout = parseDuration(cfg.AI.Timeout, acfg.Timeout)
	provider := ai.New(acfg)

	gcfg := adgate.DefaultConfig()
	if cfg.Rewards.AdTicks > 0 {
		gcfg.Ticks = cfg.Rewards.AdTicks
	}
	gcfg.TickInterval = parseDuration(cfg.Rewards.AdTickInterval, gcfg.TickInterval)
	gate := adgate.New(gcfg)

	tcfg := tasks.DefaultConfig()
	tcfg.VerifyDelay = parseDuration(cfg.Rewards.VerifyDelay, tcfg.VerifyDelay)
	machine := tasks.New(tcfg, domain.DefaultTasks(), led, provider, gate)

	wcfg := arcade.DefaultWheelConfig()
	wcfg.SpinDuration = parseDuration(cfg.Rewards.WheelSpin, wcfg.SpinDuration)

	trcfg := arcade.DefaultTriviaConfig()
	if cfg.Rewards.TriviaBaseReward > 0 {
		trcfg.BaseReward = cfg.Rewards.TriviaBaseReward
	}
	if cfg.Rewards.TriviaStreakStep > 0 {
		trcfg.StreakStep = cfg.Rewards.TriviaStreakStep
	}
	if cfg.Rewards.TriviaDifficulty != "" {
		trcfg.Difficulty = cfg.Rewards.TriviaDifficulty
	}
	if cfg.Rewards.TriviaTopic != "" {
		trcfg.Topic = cfg.Rewards.TriviaTopic
	}

	wallet := domain.WalletPolicy{
		CoinsPerUSD:  cfg.Wallet.CoinsPerUSD,
		MinPayoutUSD: cfg.Wallet.MinPayoutUSD,
		FeePercent:   cfg.Wallet.FeePercent,
	}
	if wallet.CoinsPerUSD <= 0 {
		wallet = domain.DefaultWalletPolicy()
	}

	rewards := &api.RewardsAPI{
		Ledger:  led,
		Tasks:   machine,
		Gate:    gate,
		Wheel:   arcade.NewWheel(wcfg, led),
		Miner:   arcade.NewMiner(cfg.Rewards.TapReward, led),
		Watcher: arcade.NewWatcher(cfg.Rewards.WatchReward, gate, led),
		Trivia:  arcade.NewTrivia(trcfg, provider, led),
		Wallet:  wallet,
	}

	srv := api.NewServer(rewards)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	hub := api.NewCelebrationHub()
	srv.SetCelebrationHub(hub)

	// Every ledger apply updates the gauges and feeds the live celebration
	// stream.
	led.OnCelebration(func(c ledger.Celebration) {
		state := led.Snapshot()
		observability.Transactions.WithLabelValues(string(c.Type)).Inc()
		observability.Balance.Set(float64(state.Balance))
		if c.Type == domain.TxEarn {
			observability.CoinsEarned.Add(float64(c.Amount))
		}
		hub.Broadcast(api.EventFromCelebration(c, state.Balance))
	})

	return &Daemon{cfg: cfg, store: st, ledger: led, server: srv}, nil
}

// Addr returns the configured listen address.
func (d *Daemon) Addr() string {
	return net.JoinHostPort(d.cfg.API.Host, strconv.Itoa(d.cfg.API.Port))
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	d.http = &http.Server{
		Addr:    d.Addr(),
		Handler: d.server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[daemon] listening on %s", d.http.Addr)
		if err := d.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		d.store.Close()
		return err
	case <-ctx.Done():
	}

	log.Printf("[daemon] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := d.http.Shutdown(shutdownCtx)

	if cerr := d.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
