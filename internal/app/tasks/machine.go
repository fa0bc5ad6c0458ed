// Package tasks implements the task lifecycle state machine.
//
// Tasks move available → in_progress → completed, with an extra
// awaiting_submission stop for AI challenges. The "Verifying..." phase of
// daily/survey tasks is a real in_progress state read by the presentation
// layer, not a mutated button label. Completion is idempotent and is the
// only place a task reward reaches the ledger.
package tasks

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/coinquest/coinquest/internal/app/adgate"
	"github.com/coinquest/coinquest/internal/app/ledger"
	"github.com/coinquest/coinquest/internal/domain"
	"github.com/coinquest/coinquest/internal/infra/observability"
)

// Config controls task flow behavior.
type Config struct {
	VerifyDelay time.Duration // daily/survey verification delay (default 1.5s)
}

// DefaultConfig returns the stock task flow settings.
func DefaultConfig() Config {
	return Config{VerifyDelay: 1500 * time.Millisecond}
}

// Machine drives every task through its type-specific completion flow.
type Machine struct {
	mu       sync.Mutex
	cfg      Config
	tasks    map[string]*domain.Task
	order    []string
	ledger   *ledger.Ledger
	provider domain.ContentProvider
	gate     *adgate.Gate
	prompts  map[string]domain.CreativePrompt // active prompt per AI challenge
	flows    map[domain.TaskType]flowFunc

	// vergen invalidates pending verify timers: Abandon bumps a task's
	// generation so a timer armed for an earlier start discards itself.
	vergen map[string]uint64
}

// flowFunc runs the type-specific part of Start. Called without the lock.
type flowFunc func(ctx context.Context, id string) (*domain.CreativePrompt, error)

// New creates a machine over a fixed task set. The set never grows or
// shrinks during a session.
func New(cfg Config, catalog []domain.Task, led *ledger.Ledger, provider domain.ContentProvider, gate *adgate.Gate) *Machine {
	if cfg.VerifyDelay <= 0 {
		cfg.VerifyDelay = 1500 * time.Millisecond
	}

	m := &Machine{
		cfg:      cfg,
		tasks:    make(map[string]*domain.Task, len(catalog)),
		ledger:   led,
		provider: provider,
		gate:     gate,
		prompts:  make(map[string]domain.CreativePrompt),
		vergen:   make(map[string]uint64),
	}
	for i := range catalog {
		t := catalog[i]
		m.tasks[t.ID] = &t
		m.order = append(m.order, t.ID)
	}

	// Flow dispatch per task type.
	m.flows = map[domain.TaskType]flowFunc{
		domain.TaskDaily:       m.startVerified,
		domain.TaskSurvey:      m.startVerified,
		domain.TaskVideo:       m.startVideo,
		domain.TaskAIChallenge: m.startAIChallenge,
	}
	return m
}

// Tasks returns the catalog snapshot in declaration order.
func (m *Machine) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.tasks[id])
	}
	return out
}

// Get returns a snapshot of one task.
func (m *Machine) Get(id string) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return *t, nil
}

// Start begins a task's completion flow. For AI challenges the fetched
// creative prompt is returned; other types return a nil prompt.
func (m *Machine) Start(ctx context.Context, id string) (*domain.CreativePrompt, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrTaskNotFound
	}
	if t.Completed() {
		m.mu.Unlock()
		return nil, domain.ErrTaskCompleted
	}
	if t.State != domain.TaskAvailable {
		// Already mid-flow; starting again is a no-op.
		m.mu.Unlock()
		return nil, nil
	}
	t.State = domain.TaskInProgress
	flow := m.flows[t.Type]
	m.mu.Unlock()

	if flow == nil {
		m.revert(id)
		return nil, domain.ErrTaskNotFound
	}
	return flow(ctx, id)
}

// startVerified handles daily/survey: a fixed verification delay, then
// direct completion. The timer captures the task's generation; Abandon
// bumps it, so a stale timer never completes a torn-down flow.
func (m *Machine) startVerified(_ context.Context, id string) (*domain.CreativePrompt, error) {
	m.mu.Lock()
	gen := m.vergen[id]
	m.mu.Unlock()

	time.AfterFunc(m.cfg.VerifyDelay, func() {
		m.mu.Lock()
		stale := m.vergen[id] != gen
		m.mu.Unlock()
		if stale {
			return
		}
		m.complete(id, 0)
	})
	return nil, nil
}

// startVideo hands completion to the ad gate: the task finishes when the
// countdown grants its reward.
func (m *Machine) startVideo(_ context.Context, id string) (*domain.CreativePrompt, error) {
	err := m.gate.Activate(func() {
		observability.AdCompletions.Inc()
		m.complete(id, 0)
	})
	if err != nil {
		m.revert(id)
		return nil, err
	}
	observability.AdActivations.Inc()
	return nil, nil
}

// startAIChallenge fetches a creative prompt (the provider supplies canned
// content on any failure) and parks the task awaiting a submission.
func (m *Machine) startAIChallenge(ctx context.Context, id string) (*domain.CreativePrompt, error) {
	prompt := m.provider.GenerateCreativePrompt(ctx)

	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok || t.Completed() {
		m.mu.Unlock()
		return nil, domain.ErrTaskCompleted
	}
	t.State = domain.TaskAwaitingSubmission
	m.prompts[id] = prompt
	m.mu.Unlock()

	return &prompt, nil
}

// SubmitResult is what the user sees after an AI grading round.
type SubmitResult struct {
	Grade domain.Grade `json:"grade"`
	Bonus int64        `json:"bonus"`
	Total int64        `json:"total"`
}

// Submit grades an AI-challenge submission and completes the task.
// The bonus scales with the score — score 5 is the break-even (no bonus),
// score 10 doubles the reward, and scores below 5 never penalize.
func (m *Machine) Submit(ctx context.Context, id, submission string) (SubmitResult, error) {
	if strings.TrimSpace(submission) == "" {
		return SubmitResult{}, domain.ErrEmptySubmission
	}

	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return SubmitResult{}, domain.ErrTaskNotFound
	}
	if t.Completed() {
		m.mu.Unlock()
		return SubmitResult{}, domain.ErrTaskCompleted
	}
	if t.Type != domain.TaskAIChallenge {
		m.mu.Unlock()
		return SubmitResult{}, domain.ErrNotSubmittable
	}
	if t.State != domain.TaskAwaitingSubmission {
		m.mu.Unlock()
		return SubmitResult{}, domain.ErrTaskNotStarted
	}
	prompt := m.prompts[id]
	reward := t.Reward
	m.mu.Unlock()

	grade := m.provider.GradeSubmission(ctx, prompt.Prompt, submission)
	bonus := Bonus(reward, grade.Score)

	m.complete(id, bonus)

	m.mu.Lock()
	delete(m.prompts, id)
	m.mu.Unlock()

	return SubmitResult{Grade: grade, Bonus: bonus, Total: reward + bonus}, nil
}

// Bonus computes the score-scaled AI-challenge bonus:
// floor(reward * (score/5 - 1)), clamped to a minimum of 0.
func Bonus(reward int64, score int) int64 {
	b := reward * int64(score-5) / 5
	if b < 0 {
		return 0
	}
	return b
}

// Abandon tears down an in-flight flow and returns the task to available.
// For video tasks the ad countdown is cancelled; for daily/survey tasks the
// pending verification timer is invalidated. No reward is granted either way.
func (m *Machine) Abandon(id string) error {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	if t.Completed() || t.State == domain.TaskAvailable {
		m.mu.Unlock()
		return nil
	}
	isVideo := t.Type == domain.TaskVideo
	t.State = domain.TaskAvailable
	delete(m.prompts, id)
	m.vergen[id]++
	m.mu.Unlock()

	if isVideo {
		m.gate.Deactivate()
		observability.AdCancellations.Inc()
	}
	return nil
}

// complete marks the task done and issues the reward. Idempotent: re-entry
// after the one-way completed transition is a no-op.
func (m *Machine) complete(id string, bonus int64) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok || t.Completed() {
		m.mu.Unlock()
		return
	}
	t.State = domain.TaskCompleted
	title := t.Title
	amount := t.Reward + bonus
	taskType := t.Type
	m.mu.Unlock()

	observability.TaskCompletions.WithLabelValues(string(taskType)).Inc()
	log.Printf("[tasks] completed %s (%s) +%d coins", id, taskType, amount)
	m.ledger.ApplyEarn(amount, "Task: "+title)
}

// revert returns a task to available after a failed start.
func (m *Machine) revert(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && !t.Completed() {
		t.State = domain.TaskAvailable
	}
}
