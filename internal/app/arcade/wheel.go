// Package arcade implements the coin mini-games: the Lucky Wheel, the AI
// trivia game, the tap miner, and the standalone watch-and-earn ad flow.
// Every non-zero win is issued through the Reward Ledger.
package arcade

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/coinquest/coinquest/internal/app/adgate"
	"github.com/coinquest/coinquest/internal/app/ledger"
	"github.com/coinquest/coinquest/internal/domain"
	"github.com/coinquest/coinquest/internal/infra/observability"
)

// ─── Lucky Wheel ────────────────────────────────────────────────────────────

// WheelConfig controls the Lucky Wheel.
type WheelConfig struct {
	Rewards      []int64       // prize table, drawn uniformly (default {10,20,50,100,0,5})
	SpinDuration time.Duration // busy window per spin (default 2s)

	// Intn draws a uniform int in [0, n); nil means a time-seeded source.
	// Injectable so tests can pin outcomes.
	Intn func(n int) int
}

// DefaultWheelConfig returns the stock prize table and spin timing.
func DefaultWheelConfig() WheelConfig {
	return WheelConfig{
		Rewards:      []int64{10, 20, 50, 100, 0, 5},
		SpinDuration: 2 * time.Second,
	}
}

// SpinResult is the outcome of one wheel spin. A zero prize means "no win":
// the user sees the bad-luck message and the ledger is untouched.
type SpinResult struct {
	Prize int64 `json:"prize"`
	Win   bool  `json:"win"`
}

// Wheel is the Lucky Wheel mini-game. One spin at a time: the busy flag
// debounces re-triggering for the duration of the spin animation.
type Wheel struct {
	mu     sync.Mutex
	cfg    WheelConfig
	busy   bool
	ledger *ledger.Ledger
}

// NewWheel creates a Lucky Wheel over the given ledger.
func NewWheel(cfg WheelConfig, led *ledger.Ledger) *Wheel {
	if len(cfg.Rewards) == 0 {
		cfg.Rewards = DefaultWheelConfig().Rewards
	}
	if cfg.SpinDuration <= 0 {
		cfg.SpinDuration = 2 * time.Second
	}
	if cfg.Intn == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		var mu sync.Mutex
		cfg.Intn = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return rng.Intn(n)
		}
	}
	return &Wheel{cfg: cfg, ledger: led}
}

// Spin runs one spin: it holds the busy flag for the spin duration, then
// draws a prize uniformly from the reward table. Cancelling ctx before the
// spin resolves grants nothing. Returns ErrWheelSpinning while busy.
func (w *Wheel) Spin(ctx context.Context) (SpinResult, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return SpinResult{}, domain.ErrWheelSpinning
	}
	w.busy = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	timer := time.NewTimer(w.cfg.SpinDuration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// Torn down mid-spin: no draw, no reward.
		return SpinResult{}, ctx.Err()
	case <-timer.C:
	}

	prize := w.cfg.Rewards[w.cfg.Intn(len(w.cfg.Rewards))]
	observability.WheelSpins.WithLabelValues(strconv.FormatInt(prize, 10)).Inc()

	if prize > 0 {
		w.ledger.ApplyEarn(prize, "Lucky Wheel")
	}
	return SpinResult{Prize: prize, Win: prize > 0}, nil
}

// Busy reports whether a spin is in flight.
func (w *Wheel) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// ─── Tap Miner ──────────────────────────────────────────────────────────────

// Miner is the manual tap-to-mine game: every tap credits a fixed amount.
type Miner struct {
	reward int64
	ledger *ledger.Ledger
}

// NewMiner creates a tap miner. reward <= 0 defaults to 1 coin per tap.
func NewMiner(reward int64, led *ledger.Ledger) *Miner {
	if reward <= 0 {
		reward = 1
	}
	return &Miner{reward: reward, ledger: led}
}

// Tap credits one tap's worth of coins and returns the new balance.
func (m *Miner) Tap() int64 {
	state := m.ledger.ApplyEarn(m.reward, "Tap Mining")
	return state.Balance
}

// ─── Watch & Earn ───────────────────────────────────────────────────────────

// Watcher is the standalone rewarded-ad flow in the arcade: a completed ad
// view pays a fixed amount through the shared ad gate.
type Watcher struct {
	reward int64
	gate   *adgate.Gate
	ledger *ledger.Ledger
}

// NewWatcher creates a watch-and-earn flow. reward <= 0 defaults to 25.
func NewWatcher(reward int64, gate *adgate.Gate, led *ledger.Ledger) *Watcher {
	if reward <= 0 {
		reward = 25
	}
	return &Watcher{reward: reward, gate: gate, ledger: led}
}

// Watch starts an ad view that pays on completion. Returns
// ErrAdAlreadyActive while a view is in progress.
func (w *Watcher) Watch() error {
	err := w.gate.Activate(func() {
		observability.AdCompletions.Inc()
		w.ledger.ApplyEarn(w.reward, "Ad Watched")
	})
	if err != nil {
		return err
	}
	observability.AdActivations.Inc()
	return nil
}
