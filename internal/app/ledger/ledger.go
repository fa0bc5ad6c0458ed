// Package ledger implements the Reward Ledger — the single authoritative
// mutator of the user's account state.
//
// Every coin that enters or leaves the system passes through ApplyEarn or
// ApplySpend. Each apply:
//  1. Constructs an immutable Transaction (fresh uuid, current timestamp)
//  2. Updates balance and XP, recomputes the level
//  3. Prepends the transaction to the newest-first history
//  4. Persists the full state to the store in apply order (errors logged,
//     not propagated)
//  5. Publishes a one-shot celebration event to registered listeners,
//     also in apply order
package ledger

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coinquest/coinquest/internal/domain"
)

// Config controls ledger behavior.
type Config struct {
	XPDivisor  int64 // XP granted per coin: floor(amount / XPDivisor)
	XPPerLevel int64 // linear level curve divisor

	// Now and NewID are injectable for tests; nil means time.Now / uuid.
	Now   func() time.Time
	NewID func() string
}

// DefaultConfig returns the stock reward accounting rules.
func DefaultConfig() Config {
	return Config{
		XPDivisor:  5,
		XPPerLevel: domain.DefaultXPPerLevel,
	}
}

// Celebration is the one-shot celebratory signal emitted once per apply.
// Consumers acknowledge it by receiving it; there is no shared flag to reset.
type Celebration struct {
	TxID   string        `json:"tx_id"`
	Title  string        `json:"title"`
	Amount int64         `json:"amount"`
	Type   domain.TxType `json:"type"`
	At     time.Time     `json:"at"`
}

// Ledger owns the UserState. All mutation is serialized behind an internal
// mutex so applies from any goroutine preserve the balance invariant.
type Ledger struct {
	mu        sync.Mutex
	cfg       Config
	state     domain.UserState
	store     domain.StateStore
	listeners []func(Celebration)

	// Celebrations queue under mu and drain under emitMu, so delivery
	// follows apply order without holding mu across listener calls.
	emitMu  sync.Mutex
	pending []Celebration
}

// Open loads the persisted state from the store, falling back to the default
// seeded state when the slot is missing or unreadable. The fallback is
// written back immediately so the next load succeeds.
func Open(cfg Config, store domain.StateStore) *Ledger {
	if cfg.XPDivisor <= 0 {
		cfg.XPDivisor = 5
	}
	if cfg.XPPerLevel <= 0 {
		cfg.XPPerLevel = domain.DefaultXPPerLevel
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "tx_" + uuid.NewString() }
	}

	l := &Ledger{cfg: cfg, store: store}

	state, err := store.Load()
	if err != nil {
		log.Printf("[ledger] no usable persisted state (%v), seeding defaults", err)
		state = domain.DefaultUserState(cfg.Now())
		if err := store.Save(state); err != nil {
			log.Printf("[ledger] seed write failed: %v", err)
		}
	}
	l.state = state
	return l
}

// OnCelebration registers a listener invoked once per apply, in apply
// order. Listeners may read the ledger but must not apply from within.
func (l *Ledger) OnCelebration(fn func(Celebration)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// ApplyEarn records an earn transaction and returns the updated state.
// The operation is total over integer amounts: zero and negative values are
// accepted and flow through the same accounting.
func (l *Ledger) ApplyEarn(amount int64, title string) domain.UserState {
	return l.apply(amount, title, domain.TxEarn)
}

// ApplySpend records a spend transaction and returns the updated state.
// Spends reduce the balance and grant no XP.
func (l *Ledger) ApplySpend(amount int64, title string) domain.UserState {
	return l.apply(amount, title, domain.TxSpend)
}

func (l *Ledger) apply(amount int64, title string, txType domain.TxType) domain.UserState {
	l.mu.Lock()

	tx := domain.Transaction{
		ID:     l.cfg.NewID(),
		Title:  title,
		Amount: amount,
		Type:   txType,
		Date:   l.cfg.Now(),
	}

	switch txType {
	case domain.TxSpend:
		l.state.Balance -= amount
	default:
		l.state.Balance += amount
		l.state.XP += floorDiv(amount, l.cfg.XPDivisor)
	}
	l.state.Level = domain.LevelForXP(l.state.XP, l.cfg.XPPerLevel)

	// Newest first.
	l.state.History = append([]domain.Transaction{tx}, l.state.History...)

	snapshot := l.snapshotLocked()

	// Persist while still holding the lock so slot writes land in apply
	// order. Fire-and-forget from the ledger's perspective: a failed write
	// is logged and the in-memory state remains authoritative.
	if err := l.store.Save(snapshot); err != nil {
		log.Printf("[ledger] persist failed after %s: %v", tx.ID, err)
	}

	l.pending = append(l.pending, Celebration{
		TxID:   tx.ID,
		Title:  title,
		Amount: amount,
		Type:   txType,
		At:     tx.Date,
	})
	l.mu.Unlock()

	l.drainCelebrations()
	return snapshot
}

// drainCelebrations delivers queued celebrations single-file. Whichever
// apply reaches the drain first empties the whole queue, so a competitor
// arriving later may find nothing left to deliver.
func (l *Ledger) drainCelebrations() {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		event := l.pending[0]
		l.pending = l.pending[1:]
		listeners := l.listeners
		l.mu.Unlock()

		for _, fn := range listeners {
			fn(event)
		}
	}
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() domain.UserState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Balance returns the current coin balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Balance
}

// LevelProgressPct returns progress through the current level, 0..100.
func (l *Ledger) LevelProgressPct() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.LevelProgressPct(l.state.XP, l.cfg.XPPerLevel)
}

// History returns up to limit transactions, newest first.
// limit <= 0 returns the full history.
func (l *Ledger) History(limit int) []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.state.History)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Transaction, n)
	copy(out, l.state.History[:n])
	return out
}

func (l *Ledger) snapshotLocked() domain.UserState {
	history := make([]domain.Transaction, len(l.state.History))
	copy(history, l.state.History)
	return domain.UserState{
		Balance: l.state.Balance,
		XP:      l.state.XP,
		Level:   l.state.Level,
		History: history,
	}
}

// floorDiv divides toward negative infinity so negative earn amounts deduct
// XP symmetrically to how positive amounts grant it.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
