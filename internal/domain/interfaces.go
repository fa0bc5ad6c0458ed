package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// ContentProvider abstracts the generative-AI service that supplies trivia
// questions, creative prompts, and submission grades. Implementations must
// resolve every failure (transport, timeout, malformed response) to a fixed
// fallback — callers never see an error from these methods.
type ContentProvider interface {
	// GenerateTrivia returns a multiple-choice question with exactly 4 options.
	GenerateTrivia(ctx context.Context, difficulty, topic string) TriviaQuestion

	// GenerateCreativePrompt returns a short writing challenge.
	GenerateCreativePrompt(ctx context.Context) CreativePrompt

	// GradeSubmission scores a submission 1–10 against the prompt.
	GradeSubmission(ctx context.Context, prompt, submission string) Grade
}

// StateStore abstracts the single-slot persistence adapter.
// Load on a missing slot returns ErrSlotNotFound; callers fall back to
// DefaultUserState and re-seed.
type StateStore interface {
	Load() (UserState, error)
	Save(state UserState) error
}
