package domain

import (
	"testing"
	"time"
)

// ─── Default State Tests ────────────────────────────────────────────────────

func TestDefaultUserState(t *testing.T) {
	now := time.Now()
	s := DefaultUserState(now)

	if s.Balance != 1250 {
		t.Errorf("Balance = %d, want 1250", s.Balance)
	}
	if s.XP != 450 {
		t.Errorf("XP = %d, want 450", s.XP)
	}
	if s.Level != 3 {
		t.Errorf("Level = %d, want 3", s.Level)
	}
	if len(s.History) != 1 {
		t.Fatalf("expected 1 seeded transaction, got %d", len(s.History))
	}

	tx := s.History[0]
	if tx.Title != "Welcome Bonus" {
		t.Errorf("seed title = %q, want %q", tx.Title, "Welcome Bonus")
	}
	if tx.Amount != 1000 {
		t.Errorf("seed amount = %d, want 1000", tx.Amount)
	}
	if tx.Type != TxEarn {
		t.Errorf("seed type = %s, want %s", tx.Type, TxEarn)
	}
}

// ─── Leveling Tests ─────────────────────────────────────────────────────────

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name       string
		xp         int64
		xpPerLevel int64
		want       int64
	}{
		{"zero xp is level 1", 0, 1000, 1},
		{"just under a level", 999, 1000, 1},
		{"exactly one level", 1000, 1000, 2},
		{"several levels", 4500, 1000, 5},
		{"negative clamped", -50, 1000, 1},
		{"zero divisor uses default", 2500, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LevelForXP(tt.xp, tt.xpPerLevel)
			if got != tt.want {
				t.Errorf("LevelForXP(%d, %d) = %d, want %d", tt.xp, tt.xpPerLevel, got, tt.want)
			}
		})
	}
}

func TestLevelProgressPct(t *testing.T) {
	tests := []struct {
		xp   int64
		want float64
	}{
		{0, 0},
		{450, 45},
		{999, 99.9},
		{1000, 0},
		{1500, 50},
	}
	for _, tt := range tests {
		got := LevelProgressPct(tt.xp, 1000)
		if got != tt.want {
			t.Errorf("LevelProgressPct(%d) = %.1f, want %.1f", tt.xp, got, tt.want)
		}
	}
}

// ─── Task Catalog Tests ─────────────────────────────────────────────────────

func TestDefaultTasks(t *testing.T) {
	tasks := DefaultTasks()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	seen := make(map[string]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Errorf("duplicate task id %q", task.ID)
		}
		seen[task.ID] = true

		if task.State != TaskAvailable {
			t.Errorf("task %s starts in %s, want %s", task.ID, task.State, TaskAvailable)
		}
		if task.Reward < 0 {
			t.Errorf("task %s has negative reward", task.ID)
		}
	}

	if tasks[2].Type != TaskAIChallenge {
		t.Errorf("task 3 type = %s, want %s", tasks[2].Type, TaskAIChallenge)
	}
}

func TestTaskCompleted(t *testing.T) {
	task := Task{State: TaskAvailable}
	if task.Completed() {
		t.Error("available task reported completed")
	}
	task.State = TaskCompleted
	if !task.Completed() {
		t.Error("completed task not reported completed")
	}
}

// ─── Transaction Type Tests ─────────────────────────────────────────────────

func TestTxTypes(t *testing.T) {
	if TxEarn == TxSpend {
		t.Error("TxEarn and TxSpend must be distinct")
	}
	if TxEarn != "earn" {
		t.Errorf("TxEarn = %s, want earn", TxEarn)
	}
	if TxSpend != "spend" {
		t.Errorf("TxSpend = %s, want spend", TxSpend)
	}
}

// ─── Wallet Policy Tests ────────────────────────────────────────────────────

func TestWalletPolicy_USDValue(t *testing.T) {
	p := DefaultWalletPolicy()

	tests := []struct {
		balance int64
		want    float64
	}{
		{0, 0},
		{1000, 1.00},
		{1250, 1.25},
		{10000, 10.00},
	}
	for _, tt := range tests {
		if got := p.USDValue(tt.balance); got != tt.want {
			t.Errorf("USDValue(%d) = %.2f, want %.2f", tt.balance, got, tt.want)
		}
	}
}

func TestWalletPolicy_PayoutProgress(t *testing.T) {
	p := DefaultWalletPolicy()

	if got := p.PayoutProgressPct(1250); got != 12.5 {
		t.Errorf("PayoutProgressPct(1250) = %.1f, want 12.5", got)
	}
	if got := p.PayoutProgressPct(50000); got != 100 {
		t.Errorf("PayoutProgressPct(50000) = %.1f, want capped 100", got)
	}
	if p.PayoutUnlocked(9999) {
		t.Error("payout unlocked below threshold")
	}
	if !p.PayoutUnlocked(10000) {
		t.Error("payout locked at threshold")
	}
}

func TestPayoutMethods(t *testing.T) {
	methods := PayoutMethods()
	if len(methods) != 3 {
		t.Fatalf("expected 3 payout methods, got %d", len(methods))
	}
	for _, m := range methods {
		if m.Name == "" {
			t.Error("payout method with empty name")
		}
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestSentinelErrors(t *testing.T) {
	errs := []struct {
		name string
		err  error
	}{
		{"ErrTaskNotFound", ErrTaskNotFound},
		{"ErrTaskCompleted", ErrTaskCompleted},
		{"ErrAdStillPlaying", ErrAdStillPlaying},
		{"ErrAdNotActive", ErrAdNotActive},
		{"ErrWheelSpinning", ErrWheelSpinning},
		{"ErrSlotNotFound", ErrSlotNotFound},
	}

	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s.Error() is empty", tt.name)
			}
		})
	}
}
