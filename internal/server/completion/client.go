// Package completion sends a single prompt to a language model and returns
// the generated text. Failures are reported as *ServiceError so callers can
// tell network trouble from bad credentials or throttling. Nothing is retried.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// Options select the model and sampling temperature for one call.
type Options struct {
	Model       string
	Temperature float64
}

// Client performs one completion call.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Kind classifies a failed call.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindAuth      Kind = "auth"
	KindRateLimit Kind = "rate_limit"
	KindMalformed Kind = "malformed"
	KindUnknown   Kind = "unknown"
)

// ServiceError is returned by clients for every failed call. It matches
// common.ErrService with errors.Is.
type ServiceError struct {
	Kind Kind
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion %s error: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == common.ErrService }

// Classify wraps err into a *ServiceError. An existing *ServiceError is
// returned unchanged.
func Classify(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 401"),
		strings.Contains(msg, "status code: 403"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"):
		return KindAuth
	case strings.Contains(msg, "status code: 429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"):
		return KindRateLimit
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "eof"):
		return KindNetwork
	}
	return KindUnknown
}
