package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/fitquest/pkg/logger"
)

// Outcome classifies a workout submission.
type Outcome int

const (
	Accepted Outcome = iota
	Duplicate
	Failed
)

var errUnexpectedStatus = errors.New("unexpected status")

// client wraps http.Client with the bearer and JSON plumbing every call needs.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) do(ctx context.Context, method, path, token string, body any, header http.Header) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

// getJSON decodes a 200 response into out.
func (c *client) getJSON(ctx context.Context, path, token string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", errUnexpectedStatus, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// submit posts one workout.
func (c *client) submit(ctx context.Context, token string, s *Submission) Outcome {
	header := http.Header{}
	header.Set("Idempotency-Key", s.IdempotencyKey)

	resp, err := c.do(ctx, http.MethodPost, "/api/workouts", token, s.Workout, header)
	if err != nil {
		return Failed
	}
	defer closeBody(resp)
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		return Accepted
	case http.StatusConflict:
		return Duplicate
	default:
		return Failed
	}
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
	}
}
