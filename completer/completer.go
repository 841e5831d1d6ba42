package completer

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the completion capability cannot be reached,
// times out, or reports the target model is absent. The pipeline never retries
// it; the failure propagates to the caller of the current request.
var ErrUnavailable = errors.New("completion capability unavailable")

type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}
