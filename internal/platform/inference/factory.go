package inference

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/generation"
)

// Endpoint describes one configured inference endpoint.
type Endpoint struct {
	// Name identifies the strategy in logs and results. Defaults to Kind.
	Name string
	// Kind selects the request and response shape: summarize, extractive,
	// instruct or complete.
	Kind string
	URL  string
	// APIKey overrides the shared key for this endpoint.
	APIKey string
	// Timeout bounds each call. Zero selects DefaultTimeout, or
	// ExtractiveQuestionTimeout per question for extractive endpoints.
	Timeout time.Duration
}

// NewStrategy builds the strategy for a single endpoint. apiKey is used
// when the endpoint carries no key of its own.
func NewStrategy(ep Endpoint, apiKey string, httpClient *http.Client) (generation.Strategy, error) {
	key := ep.APIKey
	if strings.TrimSpace(key) == "" {
		key = apiKey
	}

	name := strings.TrimSpace(ep.Name)
	kind := strings.ToLower(strings.TrimSpace(ep.Kind))
	if name == "" {
		name = kind
	}

	switch kind {
	case KindSummarize:
		e, err := newEndpoint(ep.URL, key, ep.Timeout, httpClient)
		if err != nil {
			return nil, err
		}
		return &Summarize{endpoint: e, name: name}, nil
	case KindExtractive:
		questionTimeout := ep.Timeout
		if questionTimeout <= 0 {
			questionTimeout = ExtractiveQuestionTimeout
		}
		e, err := newEndpoint(ep.URL, key, questionTimeout, httpClient)
		if err != nil {
			return nil, err
		}
		return &Extractive{endpoint: e, name: name, questionTimeout: questionTimeout}, nil
	case KindInstruct:
		e, err := newEndpoint(ep.URL, key, ep.Timeout, httpClient)
		if err != nil {
			return nil, err
		}
		return &Instruct{endpoint: e, name: name}, nil
	case KindComplete:
		e, err := newEndpoint(ep.URL, key, ep.Timeout, httpClient)
		if err != nil {
			return nil, err
		}
		return &Complete{endpoint: e, name: name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, ep.Kind)
	}
}

// NewStrategies builds strategies for every endpoint that has an effective
// API key, preserving order. Endpoints without a key are skipped, so an
// empty result means no backend is available.
func NewStrategies(endpoints []Endpoint, apiKey string, httpClient *http.Client) ([]generation.Strategy, error) {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	strategies := make([]generation.Strategy, 0, len(endpoints))
	for i, ep := range endpoints {
		if strings.TrimSpace(ep.APIKey) == "" && strings.TrimSpace(apiKey) == "" {
			continue
		}
		s, err := NewStrategy(ep, apiKey, httpClient)
		if err != nil {
			return nil, fmt.Errorf("%w: endpoint %d: %w", generation.ErrInvalidConfig, i, err)
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
