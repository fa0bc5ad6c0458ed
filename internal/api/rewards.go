package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/coinquest/coinquest/internal/app/adgate"
	"github.com/coinquest/coinquest/internal/app/arcade"
	"github.com/coinquest/coinquest/internal/app/ledger"
	"github.com/coinquest/coinquest/internal/app/tasks"
	"github.com/coinquest/coinquest/internal/domain"
)

// ─── Rewards API ────────────────────────────────────────────────────────────
// REST endpoints for the rewards UI: balance, wallet, tasks, the rewarded-ad
// gate, and the arcade mini-games.
//
// GET  /api/state                 — balance, XP, level, full history
// GET  /api/wallet                — USD value, payout progress, methods
// GET  /api/history?limit=N       — recent transactions
// GET  /api/tasks                 — task catalog with live states
// POST /api/tasks/{id}/start      — start a task flow
// POST /api/tasks/{id}/submit     — submit a creative challenge entry
// POST /api/tasks/{id}/abandon    — cancel an in-flight task
// POST /api/ad/watch              — start a watch-and-earn ad view
// GET  /api/ad/status             — ad gate countdown state
// POST /api/ad/close              — close the finished ad view
// POST /api/arcade/wheel/spin     — spin the Lucky Wheel
// POST /api/arcade/tap            — one tap-mining tap
// GET  /api/arcade/trivia/question — fetch the next trivia question
// POST /api/arcade/trivia/answer  — answer the current question

// RewardsAPI holds references to all rewards services.
type RewardsAPI struct {
	Ledger  *ledger.Ledger
	Tasks   *tasks.Machine
	Gate    *adgate.Gate
	Wheel   *arcade.Wheel
	Miner   *arcade.Miner
	Watcher *arcade.Watcher
	Trivia  *arcade.Trivia
	Wallet  domain.WalletPolicy
}

// errStatus maps domain errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptySubmission):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskCompleted),
		errors.Is(err, domain.ErrTaskNotStarted),
		errors.Is(err, domain.ErrNotSubmittable),
		errors.Is(err, domain.ErrAdStillPlaying),
		errors.Is(err, domain.ErrAdNotActive),
		errors.Is(err, domain.ErrAdAlreadyActive),
		errors.Is(err, domain.ErrWheelSpinning),
		errors.Is(err, domain.ErrNoQuestion),
		errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleState returns the full user state snapshot.
// GET /api/state
func (a *RewardsAPI) HandleState(w http.ResponseWriter, r *http.Request) {
	state := a.Ledger.Snapshot()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance":      state.Balance,
		"xp":           state.XP,
		"level":        state.Level,
		"progress_pct": a.Ledger.LevelProgressPct(),
		"history":      state.History,
	})
}

// HandleWallet returns the wallet view of the current balance.
// GET /api/wallet
func (a *RewardsAPI) HandleWallet(w http.ResponseWriter, r *http.Request) {
	balance := a.Ledger.Balance()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance":         balance,
		"usd_value":       a.Wallet.USDValue(balance),
		"min_payout_usd":  a.Wallet.MinPayoutUSD,
		"fee_percent":     a.Wallet.FeePercent,
		"progress_pct":    a.Wallet.PayoutProgressPct(balance),
		"payout_unlocked": a.Wallet.PayoutUnlocked(balance),
		"methods":         domain.PayoutMethods(),
	})
}

// HandleHistory returns recent transactions, newest first.
// GET /api/history?limit=N
func (a *RewardsAPI) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": a.Ledger.History(limit),
	})
}

// HandleTasks returns the task catalog with live states.
// GET /api/tasks
func (a *RewardsAPI) HandleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": a.Tasks.Tasks(),
	})
}

// HandleTaskStart starts a task flow. For AI challenges the response carries
// the creative prompt; other types complete on their own.
// POST /api/tasks/{id}/start
func (a *RewardsAPI) HandleTaskStart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	prompt, err := a.Tasks.Start(r.Context(), id)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	task, _ := a.Tasks.Get(id)
	resp := map[string]interface{}{
		"id":    task.ID,
		"state": task.State,
	}
	if prompt != nil {
		resp["prompt"] = prompt
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTaskSubmit grades a creative challenge submission.
// POST /api/tasks/{id}/submit
func (a *RewardsAPI) HandleTaskSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Submission string `json:"submission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := a.Tasks.Submit(r.Context(), id, req.Submission)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score":    res.Grade.Score,
		"feedback": res.Grade.Feedback,
		"bonus":    res.Bonus,
		"total":    res.Total,
	})
}

// HandleTaskAbandon cancels an in-flight task without reward.
// POST /api/tasks/{id}/abandon
func (a *RewardsAPI) HandleTaskAbandon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.Tasks.Abandon(id); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleAdWatch starts a standalone watch-and-earn ad view.
// POST /api/ad/watch
func (a *RewardsAPI) HandleAdWatch(w http.ResponseWriter, r *http.Request) {
	if err := a.Watcher.Watch(); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.Gate.Status())
}

// HandleAdStatus returns the ad gate countdown state.
// GET /api/ad/status
func (a *RewardsAPI) HandleAdStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Gate.Status())
}

// HandleAdClose closes the finished ad view. Rejected while the countdown
// is still running.
// POST /api/ad/close
func (a *RewardsAPI) HandleAdClose(w http.ResponseWriter, r *http.Request) {
	if err := a.Gate.Close(); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleWheelSpin spins the Lucky Wheel.
// POST /api/arcade/wheel/spin
func (a *RewardsAPI) HandleWheelSpin(w http.ResponseWriter, r *http.Request) {
	res, err := a.Wheel.Spin(r.Context())
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prize":   res.Prize,
		"win":     res.Win,
		"balance": a.Ledger.Balance(),
	})
}

// HandleTap credits one tap-mining tap.
// POST /api/arcade/tap
func (a *RewardsAPI) HandleTap(w http.ResponseWriter, r *http.Request) {
	balance := a.Miner.Tap()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// HandleTriviaQuestion fetches the next trivia question. The correct answer
// index stays server-side; the client learns it only after answering.
// GET /api/arcade/trivia/question
func (a *RewardsAPI) HandleTriviaQuestion(w http.ResponseWriter, r *http.Request) {
	q := a.Trivia.NextQuestion(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question":   q.Question,
		"options":    q.Options,
		"difficulty": q.Difficulty,
		"streak":     a.Trivia.Streak(),
	})
}

// HandleTriviaAnswer locks in an answer for the current question.
// POST /api/arcade/trivia/answer
func (a *RewardsAPI) HandleTriviaAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := a.Trivia.Answer(req.Index)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Live Celebrations ──────────────────────────────────────────────────────
// Every ledger apply fires a celebration; the hub fans it out to connected
// UIs so coin pops and confetti render as they happen.

// CelebrationHub manages SSE connections for the live celebration feed.
// Broadcasts arrive from ledger listener goroutines while SSE requests
// subscribe and unsubscribe, so the client set is mutex-guarded.
type CelebrationHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewCelebrationHub creates a new celebration broadcast hub.
func NewCelebrationHub() *CelebrationHub {
	return &CelebrationHub{
		clients: make(map[chan []byte]struct{}),
	}
}

// CelebrationEvent is a single reward event on the feed.
type CelebrationEvent struct {
	Type      string `json:"type"` // "earn" or "spend"
	Title     string `json:"title"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	Timestamp int64  `json:"timestamp"` // Unix epoch
}

// Broadcast sends a celebration event to all connected clients.
func (h *CelebrationHub) Broadcast(event CelebrationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Client too slow — drop message
		}
	}
}

// Subscribe registers a new client. Returns the channel and an unsubscribe func.
func (h *CelebrationHub) Subscribe() (chan []byte, func()) {
	ch := make(chan []byte, 32)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (h *CelebrationHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// EventFromCelebration converts a ledger celebration into a feed event.
func EventFromCelebration(c ledger.Celebration, balance int64) CelebrationEvent {
	return CelebrationEvent{
		Type:      string(c.Type),
		Title:     c.Title,
		Amount:    c.Amount,
		Balance:   balance,
		Timestamp: c.At.Unix(),
	}
}

// HandleCelebrationSSE serves the live celebration feed via Server-Sent Events.
// GET /api/celebrations/live
func (h *CelebrationHub) HandleCelebrationSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	ch, unsub := h.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
