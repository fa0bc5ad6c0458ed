package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Task errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskCompleted   = errors.New("task already completed")
	ErrTaskNotStarted  = errors.New("task has not been started")
	ErrNotSubmittable  = errors.New("task does not accept submissions")
	ErrEmptySubmission = errors.New("submission text is empty")

	// Ad gate errors
	ErrAdStillPlaying  = errors.New("ad countdown has not finished")
	ErrAdNotActive     = errors.New("no ad view in progress")
	ErrAdAlreadyActive = errors.New("an ad view is already in progress")

	// Arcade errors
	ErrWheelSpinning   = errors.New("wheel spin already in progress")
	ErrNoQuestion      = errors.New("no trivia question loaded")
	ErrAlreadyAnswered = errors.New("question already answered")

	// Store errors
	ErrSlotNotFound = errors.New("state slot not found")
)
