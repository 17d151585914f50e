// Package client is the caller-side companion to the gateway: a thin HTTP
// client plus a coordinator that falls back to local processing when the
// backend is unreachable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"receptionist-agent/internal/domain"
)

const (
	defaultProbeTimeout   = 3 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// HTTPStatusError captures non-2xx gateway responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("client: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Remote calls the receptionist gateway over HTTP.
type Remote struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	probeClient  *http.Client
	probeTimeout time.Duration
}

type Option func(*Remote)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(r *Remote) {
		r.httpClient = httpClient
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(r *Remote) {
		r.probeTimeout = d
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(r *Remote) {
		r.httpClient = &http.Client{Timeout: d}
	}
}

// NewRemote builds a Remote for the gateway at baseURL. The health probe
// uses a shorter timeout than regular requests so that an unreachable
// backend is detected quickly.
func NewRemote(baseURL, token string, opts ...Option) (*Remote, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL must not be empty")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("client: bearer token must not be empty")
	}
	r := &Remote{
		baseURL:      baseURL,
		token:        token,
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.probeClient = &http.Client{Timeout: r.probeTimeout}
	return r, nil
}

type healthPayload struct {
	Status string `json:"status"`
}

// Health probes the gateway health endpoint. A nil return means the backend
// is reachable and reports itself healthy.
func (r *Remote) Health(ctx context.Context) error {
	url := r.baseURL + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("client: create health request: %w", err)
	}
	res, err := r.probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: health probe failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: url, Body: string(buf)}
	}
	var payload healthPayload
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return fmt.Errorf("client: decode health response: %w", err)
	}
	if payload.Status != "healthy" {
		return fmt.Errorf("client: backend reported status %q", payload.Status)
	}
	return nil
}

type processRequest struct {
	Message      string               `json:"message"`
	SessionID    string               `json:"sessionId"`
	CustomerInfo *domain.CustomerInfo `json:"customerInfo,omitempty"`
}

type processResponse struct {
	Success    bool           `json:"success"`
	Response   string         `json:"response"`
	Action     string         `json:"action"`
	FormData   *domain.Record `json:"formData"`
	Confidence float64        `json:"confidence"`
	Error      string         `json:"error"`
}

// ProcessConversation submits one message to the backend pipeline.
func (r *Remote) ProcessConversation(ctx context.Context, message, sessionID string, customer *domain.CustomerInfo) (Reply, error) {
	body, err := json.Marshal(processRequest{
		Message:      message,
		SessionID:    sessionID,
		CustomerInfo: customer,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("client: marshal request: %w", err)
	}

	url := r.baseURL + "/process-conversation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	res, err := r.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("client: read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Reply{}, &HTTPStatusError{StatusCode: res.StatusCode, URL: url, Body: string(raw)}
	}

	var payload processResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Reply{}, fmt.Errorf("client: decode response: %w", err)
	}
	if !payload.Success {
		return Reply{}, fmt.Errorf("client: backend rejected request: %s", payload.Error)
	}
	return Reply{
		Response:   payload.Response,
		Action:     payload.Action,
		FormData:   payload.FormData,
		Confidence: payload.Confidence,
		Source:     SourceRemote,
	}, nil
}
