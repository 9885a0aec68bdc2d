package patterns

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single outbound AWS call made after pricing.
const DefaultTimeout = 3 * time.Second

// WithTimeout derives a fail-fast context from parent.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(parent, d)
}
