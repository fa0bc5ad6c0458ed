// Package ai implements the generative-AI content provider client.
//
// The client speaks the Gemini generateContent wire format and asks for
// JSON-typed responses. Every operation carries an explicit deadline and a
// fixed fallback: transport failures, non-2xx statuses, timeouts, and
// schema violations all resolve to canned content. Callers never see an
// error — AI unavailability must not break the reward flow.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/coinquest/coinquest/internal/domain"
	"github.com/coinquest/coinquest/internal/infra/observability"
)

// Config controls the provider client.
type Config struct {
	BaseURL string        // e.g. https://generativelanguage.googleapis.com
	APIKey  string
	Model   string        // default gemini-2.5-flash
	Timeout time.Duration // per-operation deadline (default 10s)
}

// DefaultConfig returns stock provider settings. An empty APIKey is valid:
// every call will resolve to its fallback.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com",
		Model:   "gemini-2.5-flash",
		Timeout: 10 * time.Second,
	}
}

// Client is an HTTP ContentProvider backed by a Gemini-style endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a provider client.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ domain.ContentProvider = (*Client)(nil)

// ─── Fallback Content ───────────────────────────────────────────────────────

// FallbackTrivia is served when trivia generation fails.
func FallbackTrivia() domain.TriviaQuestion {
	return domain.TriviaQuestion{
		Question:           "Which coding library is used for building user interfaces?",
		Options:            []string{"Angular", "Vue", "React", "Svelte"},
		CorrectAnswerIndex: 2,
		Difficulty:         "easy",
	}
}

// FallbackCreativePrompt is served when prompt generation fails.
func FallbackCreativePrompt() domain.CreativePrompt {
	return domain.CreativePrompt{
		Prompt:   "Write a haiku about a robot.",
		Criteria: "Must be 5-7-5 syllables.",
	}
}

// FallbackGrade is served when grading fails.
func FallbackGrade() domain.Grade {
	return domain.Grade{Score: 5, Feedback: "Good effort! (AI Service Offline)"}
}

// ─── Operations ─────────────────────────────────────────────────────────────

// GenerateTrivia returns a multiple-choice question. Empty difficulty/topic
// default to "medium" and "general knowledge".
func (c *Client) GenerateTrivia(ctx context.Context, difficulty, topic string) domain.TriviaQuestion {
	if difficulty == "" {
		difficulty = "medium"
	}
	if topic == "" {
		topic = "general knowledge"
	}
	observability.ProviderRequests.WithLabelValues("trivia").Inc()

	prompt := fmt.Sprintf("Generate a multiple-choice trivia question about %s with %s difficulty. "+
		"Respond as JSON with keys question, options (exactly 4 strings), correctAnswerIndex (0-3), difficulty.", topic, difficulty)

	var q domain.TriviaQuestion
	if err := c.generate(ctx, prompt, &q); err != nil {
		c.fallback("trivia", err)
		return FallbackTrivia()
	}
	if q.Question == "" || len(q.Options) != 4 || q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
		c.fallback("trivia", fmt.Errorf("schema violation: %d options, index %d", len(q.Options), q.CorrectAnswerIndex))
		return FallbackTrivia()
	}
	return q
}

// GenerateCreativePrompt returns a short writing challenge.
func (c *Client) GenerateCreativePrompt(ctx context.Context) domain.CreativePrompt {
	observability.ProviderRequests.WithLabelValues("prompt").Inc()

	const prompt = "Generate a short, fun, creative writing prompt for a user to earn coins. " +
		"Keep it under 20 words. Respond as JSON with keys prompt and criteria (what makes a good answer)."

	var p domain.CreativePrompt
	if err := c.generate(ctx, prompt, &p); err != nil {
		c.fallback("prompt", err)
		return FallbackCreativePrompt()
	}
	if p.Prompt == "" {
		c.fallback("prompt", fmt.Errorf("schema violation: empty prompt"))
		return FallbackCreativePrompt()
	}
	return p
}

// GradeSubmission scores a submission against its prompt. Scores outside
// [1,10] are clamped.
func (c *Client) GradeSubmission(ctx context.Context, prompt, submission string) domain.Grade {
	observability.ProviderRequests.WithLabelValues("grade").Inc()

	req := fmt.Sprintf("Prompt: %s\nUser Submission: %s\n\nGrade this submission on a scale of 1-10 "+
		"based on creativity and relevance. Be generous but fair. "+
		"Respond as JSON with keys score (integer 1-10) and feedback (one sentence).", prompt, submission)

	var g domain.Grade
	if err := c.generate(ctx, req, &g); err != nil {
		c.fallback("grade", err)
		return FallbackGrade()
	}
	if g.Score < 1 {
		g.Score = 1
	}
	if g.Score > 10 {
		g.Score = 10
	}
	return g
}

func (c *Client) fallback(op string, err error) {
	observability.ProviderFallbacks.WithLabelValues(op).Inc()
	log.Printf("[ai] %s falling back to canned content: %v", op, err)
}

// ─── Wire Format ────────────────────────────────────────────────────────────

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate posts a generateContent request and decodes the JSON payload the
// model returned into out.
func (c *Client) generate(ctx context.Context, prompt string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("empty response from provider")
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
