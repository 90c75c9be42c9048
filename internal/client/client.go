// Package client posts form payloads to the recommendation API. Every
// failure mode, whether transport, undecodable body or an "error" field, is
// reported as *RequestFailed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/logger"
)

// DefaultFeedbackText is shown when the feedback response has neither a
// message nor an error.
const DefaultFeedbackText = "Done"

// RequestFailed is the single failure type for API calls
type RequestFailed struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestFailed) Error() string {
	return e.Message
}

func (e *RequestFailed) Unwrap() error {
	return e.Err
}

// RecommendResult keeps the response fields exactly as the backend sent them
type RecommendResult struct {
	Targets         json.RawMessage `json:"targets"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// FeedbackResult is the decoded /submit_feedback response
type FeedbackResult struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Text picks message, then error, then DefaultFeedbackText
func (r *FeedbackResult) Text() string {
	if r.Message != "" {
		return r.Message
	}
	if r.Error != "" {
		return r.Error
	}
	return DefaultFeedbackText
}

type ctxKeyClientIP struct{}

// WithClientIP records the browser's address so it is forwarded to the API
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP{}, ip)
}

// Client talks to the backend API under baseURL
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client with the given request timeout
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Recommend posts the profile fields to /api/recommend
func (c *Client) Recommend(ctx context.Context, fields map[string]string) (*RecommendResult, error) {
	var body struct {
		RecommendResult
		Error string `json:"error"`
	}
	status, err := c.post(ctx, "/recommend", fields, &body)
	if err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, &RequestFailed{Op: "recommend", Status: status, Message: body.Error}
	}
	return &body.RecommendResult, nil
}

// SubmitFeedback posts the feedback fields to /api/submit_feedback
func (c *Client) SubmitFeedback(ctx context.Context, fields map[string]string) (*FeedbackResult, error) {
	var body FeedbackResult
	if _, err := c.post(ctx, "/submit_feedback", fields, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// post sends body as JSON to /api{path} and decodes the reply into out
// whatever the status code, since the API reports failures in the body.
func (c *Client) post(ctx context.Context, path string, body map[string]string, out interface{}) (int, error) {
	op := strings.TrimPrefix(path, "/")
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, &RequestFailed{Op: op, Message: "could not encode request", Err: err}
	}

	url := c.baseURL + "/api" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, &RequestFailed{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ip, ok := ctx.Value(ctxKeyClientIP{}).(string); ok && ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	log := logger.FromContext(ctx).WithField("url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("api request failed")
		return 0, &RequestFailed{Op: op, Message: "The service is unavailable, please try again.", Err: errors.Wrapf(err, "post %s", url)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &RequestFailed{Op: op, Status: resp.StatusCode, Message: "could not read response", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.WithField("status", resp.StatusCode).WithError(err).Warn("api returned a non-JSON body")
		return resp.StatusCode, &RequestFailed{
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Unexpected response from the service (%d %s)", resp.StatusCode, http.StatusText(resp.StatusCode)),
			Err:     err,
		}
	}
	log.WithField("status", resp.StatusCode).Debug("api request completed")
	return resp.StatusCode, nil
}
