package arcade

import (
	"context"
	"sync"

	"github.com/coinquest/coinquest/internal/app/ledger"
	"github.com/coinquest/coinquest/internal/domain"
	"github.com/coinquest/coinquest/internal/infra/observability"
)

// ─── AI Trivia ──────────────────────────────────────────────────────────────

// TriviaConfig controls trivia rewards.
type TriviaConfig struct {
	BaseReward int64 // coins for a correct answer (default 20)
	StreakStep int64 // extra coins per prior consecutive correct (default 5)
	Difficulty string
	Topic      string
}

// DefaultTriviaConfig returns the stock trivia reward curve.
func DefaultTriviaConfig() TriviaConfig {
	return TriviaConfig{
		BaseReward: 20,
		StreakStep: 5,
		Difficulty: "medium",
		Topic:      "general knowledge",
	}
}

// AnswerResult is the outcome of answering the current question.
type AnswerResult struct {
	Correct      bool  `json:"correct"`
	CorrectIndex int   `json:"correct_index"`
	Reward       int64 `json:"reward"`
	Streak       int64 `json:"streak"`
}

// Trivia is the AI trivia session. Questions come from the content provider
// (with its canned fallback); the k-th consecutive correct answer pays
// base + step*(k-1), and any wrong answer resets the streak.
type Trivia struct {
	mu       sync.Mutex
	cfg      TriviaConfig
	provider domain.ContentProvider
	ledger   *ledger.Ledger
	current  *domain.TriviaQuestion
	answered bool
	streak   int64
}

// NewTrivia creates a trivia session.
func NewTrivia(cfg TriviaConfig, provider domain.ContentProvider, led *ledger.Ledger) *Trivia {
	if cfg.BaseReward <= 0 {
		cfg.BaseReward = 20
	}
	if cfg.StreakStep < 0 {
		cfg.StreakStep = 5
	}
	return &Trivia{cfg: cfg, provider: provider, ledger: led}
}

// NextQuestion fetches a fresh question and arms the session to accept one
// answer. The previous question, answered or not, is discarded.
func (tr *Trivia) NextQuestion(ctx context.Context) domain.TriviaQuestion {
	q := tr.provider.GenerateTrivia(ctx, tr.cfg.Difficulty, tr.cfg.Topic)

	tr.mu.Lock()
	tr.current = &q
	tr.answered = false
	tr.mu.Unlock()
	return q
}

// Answer locks in the choice for the current question. The first selection
// wins; further answers return ErrAlreadyAnswered until the next question.
func (tr *Trivia) Answer(index int) (AnswerResult, error) {
	tr.mu.Lock()
	if tr.current == nil {
		tr.mu.Unlock()
		return AnswerResult{}, domain.ErrNoQuestion
	}
	if tr.answered {
		tr.mu.Unlock()
		return AnswerResult{}, domain.ErrAlreadyAnswered
	}
	tr.answered = true
	correctIndex := tr.current.CorrectAnswerIndex
	correct := index == correctIndex

	var reward int64
	if correct {
		reward = tr.cfg.BaseReward + tr.cfg.StreakStep*tr.streak
		tr.streak++
	} else {
		tr.streak = 0
	}
	tr.mu.Unlock()

	if correct {
		observability.TriviaAnswers.WithLabelValues("correct").Inc()
		tr.ledger.ApplyEarn(reward, "Trivia Reward")
	} else {
		observability.TriviaAnswers.WithLabelValues("incorrect").Inc()
	}

	return AnswerResult{
		Correct:      correct,
		CorrectIndex: correctIndex,
		Reward:       reward,
		Streak:       tr.currentStreak(),
	}, nil
}

// Streak returns the current consecutive-correct count.
func (tr *Trivia) Streak() int64 { return tr.currentStreak() }

func (tr *Trivia) currentStreak() int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.streak
}
