// Package adgate implements the timed rewarded-ad flow.
//
// Activating the gate starts a fixed countdown (5 one-second display ticks
// by default). When the countdown reaches zero the reward callback fires
// exactly once — a one-shot flag guards against double grants when the
// surrounding view is closed and reopened mid-cycle — and the close
// affordance unlocks. Tearing the gate down before zero cancels the timer
// and grants nothing.
package adgate

import (
	"sync"
	"time"

	"github.com/coinquest/coinquest/internal/domain"
)

// Config controls countdown behavior.
type Config struct {
	Ticks        int           // display ticks per view (default 5)
	TickInterval time.Duration // wall time per tick (default 1s)
}

// DefaultConfig returns the stock 5×1s ad countdown.
func DefaultConfig() Config {
	return Config{Ticks: 5, TickInterval: time.Second}
}

// Status is a snapshot of the gate for the presentation layer.
type Status struct {
	Active    bool `json:"active"`
	Remaining int  `json:"remaining"`
	Granted   bool `json:"granted"`
	Closable  bool `json:"closable"`
}

// Gate is a one-at-a-time ad countdown. A generation counter invalidates
// stale ticker goroutines so a torn-down countdown can never grant.
type Gate struct {
	mu        sync.Mutex
	cfg       Config
	gen       uint64
	active    bool
	remaining int
	granted   bool
	onReward  func()
}

// New creates an inactive gate.
func New(cfg Config) *Gate {
	if cfg.Ticks <= 0 {
		cfg.Ticks = 5
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Gate{cfg: cfg}
}

// Activate resets the countdown and clears the one-shot reward flag.
// onReward is invoked exactly once when the countdown reaches zero.
// Returns ErrAdAlreadyActive while a view is in progress.
func (g *Gate) Activate(onReward func()) error {
	g.mu.Lock()
	if g.active {
		g.mu.Unlock()
		return domain.ErrAdAlreadyActive
	}
	g.gen++
	gen := g.gen
	g.active = true
	g.remaining = g.cfg.Ticks
	g.granted = false
	g.onReward = onReward
	interval := g.cfg.TickInterval
	g.mu.Unlock()

	go g.run(gen, interval)
	return nil
}

func (g *Gate) run(gen uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		g.mu.Lock()
		if g.gen != gen || !g.active {
			// Torn down (or replaced) — stale tick, no effect.
			g.mu.Unlock()
			return
		}
		g.remaining--
		if g.remaining > 0 {
			g.mu.Unlock()
			continue
		}

		var reward func()
		if !g.granted {
			g.granted = true
			reward = g.onReward
		}
		g.mu.Unlock()

		if reward != nil {
			reward()
		}
		return
	}
}

// Close dismisses a finished view. Permitted only after the countdown
// reached zero; the reward has already been granted at that point.
func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return domain.ErrAdNotActive
	}
	if g.remaining > 0 {
		return domain.ErrAdStillPlaying
	}
	g.active = false
	g.onReward = nil
	return nil
}

// Deactivate tears the gate down regardless of countdown position.
// A pending countdown is cancelled and no reward is granted.
func (g *Gate) Deactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.active = false
	g.onReward = nil
}

// Status returns a snapshot for display.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{
		Active:    g.active,
		Remaining: g.remaining,
		Granted:   g.granted,
		Closable:  g.active && g.remaining <= 0,
	}
}
