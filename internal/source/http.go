package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jask/stepthrough/internal/trace"
)

const maxErrorExcerpt = 512

// StatusError is returned for a non-2xx response from the trace service.
type StatusError struct {
	Code    int
	Excerpt string
}

func (e *StatusError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("trace service returned %d", e.Code)
	}
	return fmt.Sprintf("trace service returned %d: %s", e.Code, e.Excerpt)
}

// HTTP talks to the trace generation service. Full URLs are fetched with
// GET; anything else is treated as an algorithm name and POSTed to
// BaseURL/api/trace.
type HTTP struct {
	BaseURL string
	Client  *http.Client
	// Inputs optionally supplies the "input" object per algorithm name.
	Inputs map[string]map[string]any
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{BaseURL: strings.TrimRight(baseURL, "/"), Client: &http.Client{Timeout: timeout}}
}

type generateRequest struct {
	Algorithm string         `json:"algorithm"`
	Input     map[string]any `json:"input,omitempty"`
}

func (h *HTTP) Fetch(ctx context.Context, ref string) (*trace.Trace, error) {
	req, err := h.newRequest(ctx, ref)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		return nil, fmt.Errorf("fetch %s: %w", ref, &StatusError{Code: resp.StatusCode, Excerpt: strings.TrimSpace(string(body))})
	}
	t, err := trace.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	return t, nil
}

func (h *HTTP) newRequest(ctx context.Context, ref string) (*http.Request, error) {
	if isURL(ref) {
		return http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	}
	if h.BaseURL == "" {
		return nil, fmt.Errorf("fetch %s: no trace service configured", ref)
	}
	payload, err := json.Marshal(generateRequest{Algorithm: ref, Input: h.Inputs[ref]})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/trace", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
