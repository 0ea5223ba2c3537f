package completion

import (
	"context"
	"errors"
	"time"
)

// Recorder receives one observation per call. outcome is "ok" or the
// ServiceError kind.
type Recorder interface {
	ObserveCompletion(model, outcome string, elapsed time.Duration)
}

// Instrumented reports every call of Next to Recorder.
type Instrumented struct {
	Next     Client
	Recorder Recorder
}

func (c Instrumented) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	out, err := c.Next.Complete(ctx, prompt, opts)

	outcome := "ok"
	if err != nil {
		outcome = string(KindUnknown)
		var se *ServiceError
		if errors.As(err, &se) {
			outcome = string(se.Kind)
		}
	}
	if c.Recorder != nil {
		c.Recorder.ObserveCompletion(opts.Model, outcome, time.Since(start))
	}
	return out, err
}
