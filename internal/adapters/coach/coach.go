// Package coach talks to the Gemini generateContent API.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/fitquest/pkg/logger"
	"github.com/okian/fitquest/pkg/metrics"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	maxBodyBytes   = 1 << 20
)

// DryRunReply is returned instead of calling the API in dry-run mode.
const DryRunReply = "Great work staying active! Aim for consistency: three to four sessions a week, " +
	"mixed intensity, and plenty of water and sleep."

// Client generates coach replies.
type Client struct {
	key     string
	model   string
	baseURL string
	dryRun  bool
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// New creates a client. Without an API key and without dry-run every call
// fails with ErrUnavailable.
func New(opts ...Option) *Client {
	c := &Client{
		model:   defaultModel,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("coach")
	}
	return c
}

// Available reports whether Generate can produce a reply.
func (c *Client) Available() bool { return c.dryRun || c.key != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends prompt and returns the first candidate's text. kind labels
// the request in metrics, e.g. "chat" or "plan".
func (c *Client) Generate(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordCoachRequest(kind, outcome, float64(time.Since(start).Milliseconds()))
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.dryRun {
		c.logger.Debug(ctx, "coach dry run", logger.Int("prompt_len", len(prompt)))
		return DryRunReply, nil
	}
	if c.key == "" {
		return "", ErrUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrRequest, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.baseURL, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "gemini request failed", logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: upstream %s", ErrRateLimited, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error(ctx, "gemini http error", logger.String("status", resp.Status), logger.Int("body_len", len(raw)))
		return "", fmt.Errorf("%w: upstream %s", ErrRequest, resp.Status)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrRequest, err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, out.PromptFeedback.BlockReason)
	}

	var text string
	if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
		text = strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	}
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
