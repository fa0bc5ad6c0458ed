package adgate

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coinquest/coinquest/internal/domain"
)

// Fast countdown for tests: 5 ticks × 5ms.
func fastGate() *Gate {
	return New(Config{Ticks: 5, TickInterval: 5 * time.Millisecond})
}

func waitForGrant(t *testing.T, grants *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if grants.Load() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d grants, have %d", want, grants.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestGate_GrantsExactlyOnce(t *testing.T) {
	g := fastGate()
	var grants atomic.Int64

	if err := g.Activate(func() { grants.Add(1) }); err != nil {
		t.Fatalf("activate: %v", err)
	}

	waitForGrant(t, &grants, 1)

	// Let any stray ticks settle; the count must not move.
	time.Sleep(50 * time.Millisecond)
	if grants.Load() != 1 {
		t.Errorf("expected exactly 1 grant, got %d", grants.Load())
	}

	st := g.Status()
	if !st.Closable {
		t.Error("gate should be closable after countdown reaches zero")
	}
	if !st.Granted {
		t.Error("granted flag not set")
	}
}

func TestGate_CancelBeforeZeroGrantsNothing(t *testing.T) {
	g := New(Config{Ticks: 50, TickInterval: 5 * time.Millisecond})
	var grants atomic.Int64

	g.Activate(func() { grants.Add(1) })
	time.Sleep(20 * time.Millisecond) // partway through the countdown
	g.Deactivate()

	time.Sleep(300 * time.Millisecond)
	if grants.Load() != 0 {
		t.Errorf("cancelled countdown granted %d rewards, want 0", grants.Load())
	}
}

func TestGate_CloseBeforeZeroRejected(t *testing.T) {
	g := New(Config{Ticks: 100, TickInterval: 10 * time.Millisecond})
	g.Activate(func() {})

	err := g.Close()
	if !errors.Is(err, domain.ErrAdStillPlaying) {
		t.Errorf("Close mid-countdown = %v, want ErrAdStillPlaying", err)
	}
	g.Deactivate()
}

func TestGate_CloseAfterZero(t *testing.T) {
	g := fastGate()
	var grants atomic.Int64
	g.Activate(func() { grants.Add(1) })
	waitForGrant(t, &grants, 1)

	if err := g.Close(); err != nil {
		t.Errorf("Close after zero = %v, want nil", err)
	}
	if err := g.Close(); !errors.Is(err, domain.ErrAdNotActive) {
		t.Errorf("second Close = %v, want ErrAdNotActive", err)
	}
}

func TestGate_ReactivateAfterTeardownGrantsOnce(t *testing.T) {
	g := fastGate()
	var grants atomic.Int64

	// Tear down mid-cycle, then run a fresh view to completion. Only the
	// second activation may grant.
	g.Activate(func() { grants.Add(1) })
	time.Sleep(7 * time.Millisecond)
	g.Deactivate()

	g.Activate(func() { grants.Add(1) })
	waitForGrant(t, &grants, 1)

	time.Sleep(50 * time.Millisecond)
	if grants.Load() != 1 {
		t.Errorf("expected 1 grant across teardown+rerun, got %d", grants.Load())
	}
}

func TestGate_ActivateWhileActiveRejected(t *testing.T) {
	g := New(Config{Ticks: 100, TickInterval: 10 * time.Millisecond})
	g.Activate(func() {})
	defer g.Deactivate()

	if err := g.Activate(func() {}); !errors.Is(err, domain.ErrAdAlreadyActive) {
		t.Errorf("double activate = %v, want ErrAdAlreadyActive", err)
	}
}

func TestGate_StatusCountsDown(t *testing.T) {
	g := New(Config{Ticks: 5, TickInterval: 10 * time.Millisecond})
	g.Activate(func() {})
	defer g.Deactivate()

	first := g.Status()
	if !first.Active {
		t.Fatal("gate not active after Activate")
	}
	if first.Remaining > 5 {
		t.Errorf("remaining = %d, want <= 5", first.Remaining)
	}

	time.Sleep(25 * time.Millisecond)
	later := g.Status()
	if later.Remaining >= first.Remaining && first.Remaining > 0 {
		t.Errorf("countdown did not advance: %d → %d", first.Remaining, later.Remaining)
	}
}
