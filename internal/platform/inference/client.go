package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/generation"
)

// DefaultTimeout bounds a single call to an endpoint.
const DefaultTimeout = 30 * time.Second

// maxErrorBody limits how much of a failed response body is kept in errors.
const maxErrorBody = 512

// NewHTTPClient returns the shared client used by every strategy.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr}
}

// endpoint posts JSON payloads to one inference URL.
type endpoint struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func newEndpoint(url, apiKey string, timeout time.Duration, httpClient *http.Client) (endpoint, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return endpoint{}, ErrMissingURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return endpoint{
		url:        url,
		apiKey:     strings.TrimSpace(apiKey),
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

// postJSON sends body and decodes a 2xx response into out. Transport
// failures and non-2xx statuses wrap generation.ErrBackendUnavailable; bodies
// that do not decode wrap generation.ErrInvalidResponse.
func (e endpoint) postJSON(ctx context.Context, timeout time.Duration, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("encode inference request: %w", err)
	}

	if timeout <= 0 {
		timeout = e.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, e.url, &buf)
	if err != nil {
		return fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", generation.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", generation.ErrBackendUnavailable,
			&HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return nil
}
