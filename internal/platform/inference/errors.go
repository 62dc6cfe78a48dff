package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy is returned when an endpoint names an unsupported strategy kind.
	ErrUnknownStrategy = errors.New("unknown inference strategy")

	// ErrMissingURL is returned when an endpoint has no URL.
	ErrMissingURL = errors.New("inference endpoint url is required")
)

// HTTPError is returned when an endpoint answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("inference endpoint returned status %d: %s", e.StatusCode, e.Body)
}
