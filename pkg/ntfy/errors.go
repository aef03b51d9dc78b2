package ntfy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks client construction failures: no usable topic,
	// bad server URL, invalid options.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks network failures and non-success HTTP responses.
	ErrTransport = errors.New("transport error")
	// ErrStream marks malformed data received on a subscription stream.
	ErrStream = errors.New("stream error")
)

// StatusError reports a non-success HTTP response from the ntfy server. It
// unwraps to ErrTransport so callers can classify without inspecting codes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ntfy returned %d", e.StatusCode)
	}
	return fmt.Sprintf("ntfy returned %d: %s", e.StatusCode, body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }
