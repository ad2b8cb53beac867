package inference

import (
	"context"
	"errors"
)

// ErrModelUnavailable means the trained artifact could not be loaded. There is
// no prediction capability without it, so callers treat this as fatal at
// startup. ErrInference is a per-request failure; it is surfaced to the caller
// and never retried.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInference        = errors.New("inference failed")
)

// Model is the opaque trained-regressor boundary: a fixed-order numeric
// feature vector in, one predicted value out.
type Model interface {
	Predict(ctx context.Context, features []float64) (float64, error)
	Close() error
}
