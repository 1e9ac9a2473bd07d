package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a background context bounded by timeout. Setting CONTEXT_TEST
// disables the deadline.
func NewContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Detached keeps the values of parent but outlives its cancellation, up to timeout.
func Detached(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
