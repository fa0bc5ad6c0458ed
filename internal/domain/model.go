// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Account Types ──────────────────────────────────────────────────────────

// UserState is the account's running totals. The ledger is the source of
// truth: Balance always equals the seeded balance plus the sum of earn
// amounts minus the sum of spend amounts in History.
type UserState struct {
	Balance int64         `json:"balance"`
	XP      int64         `json:"xp"`
	Level   int64         `json:"level"`
	History []Transaction `json:"history"`
}

// TxType is the direction of a balance change.
type TxType string

const (
	TxEarn  TxType = "earn"
	TxSpend TxType = "spend"
)

// Transaction is an immutable record of one balance change.
// Amount stores the non-negative magnitude; direction is in Type.
type Transaction struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Amount int64     `json:"amount"`
	Type   TxType    `json:"type"`
	Date   time.Time `json:"date"`
}

// DefaultUserState returns the seeded account used when no persisted state
// exists (or the persisted payload is unreadable).
func DefaultUserState(now time.Time) UserState {
	return UserState{
		Balance: 1250,
		XP:      450,
		Level:   3,
		History: []Transaction{
			{
				ID:     "tx_0",
				Title:  "Welcome Bonus",
				Amount: 1000,
				Type:   TxEarn,
				Date:   now,
			},
		},
	}
}

// ─── Leveling ───────────────────────────────────────────────────────────────

// DefaultXPPerLevel matches the progress bar's xp % 1000 modulus.
const DefaultXPPerLevel = 1000

// LevelForXP derives the level from total XP with a linear curve:
// level 1 at 0 XP, one level per xpPerLevel.
func LevelForXP(xp, xpPerLevel int64) int64 {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/xpPerLevel
}

// LevelProgressPct returns the percentage progress toward the next level.
func LevelProgressPct(xp, xpPerLevel int64) float64 {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	if xp < 0 {
		xp = 0
	}
	return float64(xp%xpPerLevel) / float64(xpPerLevel) * 100
}

// ─── Task Types ─────────────────────────────────────────────────────────────

// TaskType determines a task's completion flow.
type TaskType string

const (
	TaskDaily       TaskType = "daily"
	TaskAIChallenge TaskType = "ai-challenge"
	TaskVideo       TaskType = "video"
	TaskSurvey      TaskType = "survey"
)

// TaskState is the explicit lifecycle state of a task. The "verifying"
// phase of daily/survey tasks is a real state here, read reactively by the
// presentation layer instead of mutating a button label.
type TaskState string

const (
	TaskAvailable          TaskState = "available"
	TaskInProgress         TaskState = "in_progress"
	TaskAwaitingSubmission TaskState = "awaiting_submission"
	TaskCompleted          TaskState = "completed"
)

// Task is a unit of earnable work. The task set is fixed at session start;
// State transitions one way and never reverts from completed.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Reward      int64     `json:"reward"`
	XPReward    int64     `json:"xp_reward"` // informational; actual XP derives from coins
	Type        TaskType  `json:"type"`
	State       TaskState `json:"state"`
	Cooldown    int64     `json:"cooldown,omitempty"` // unix reset timestamp; future extension
}

// Completed reports whether the task has finished its one-way transition.
func (t Task) Completed() bool { return t.State == TaskCompleted }

// DefaultTasks returns the session task catalog.
func DefaultTasks() []Task {
	return []Task{
		{ID: "1", Title: "Daily Login", Description: "Check in to earn", Reward: 50, XPReward: 10, Type: TaskDaily, State: TaskAvailable},
		{ID: "2", Title: "Watch Video", Description: "Watch a short ad", Reward: 30, XPReward: 5, Type: TaskVideo, State: TaskAvailable},
		{ID: "3", Title: "Creative Challenge", Description: "AI writing contest", Reward: 100, XPReward: 50, Type: TaskAIChallenge, State: TaskAvailable},
	}
}

// ─── AI Content Types ───────────────────────────────────────────────────────

// TriviaQuestion is ephemeral content supplied by the AI provider.
// Consumed once per question cycle, never persisted.
type TriviaQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Difficulty         string   `json:"difficulty"`
}

// CreativePrompt is an AI-generated writing challenge.
type CreativePrompt struct {
	Prompt   string `json:"prompt"`
	Criteria string `json:"criteria"`
}

// Grade is the AI's judgment of a creative submission.
type Grade struct {
	Score    int    `json:"score"` // 1..10
	Feedback string `json:"feedback"`
}
