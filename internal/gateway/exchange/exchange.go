package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrSigning marks a request that could not be authenticated. It is never
	// retried.
	ErrSigning = errors.New("exchange: signing failed")
	// ErrNoCredentials is returned by authenticated calls when no key is set.
	ErrNoCredentials = errors.New("exchange: no credentials configured")
)

// StatusError is a non-2xx venue response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("venue returned %s", e.Status)
	}
	return fmt.Sprintf("venue returned %s: %s", e.Status, body)
}

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	KindNone    ErrorKind = ""
	KindSigning ErrorKind = "signing"
	KindTimeout ErrorKind = "timeout"
	KindStatus  ErrorKind = "http_error"
	KindNetwork ErrorKind = "network_error"
)

// Classify maps a submission error onto a kind. Anything not recognised is
// treated as a network error.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrSigning) {
		return KindSigning
	}
	var se *StatusError
	if errors.As(err, &se) {
		return KindStatus
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
