package gallery

import "context"

// Work performs a remote call off the event loop and returns the step that
// applies its result. The returned func runs on the event loop.
type Work func(ctx context.Context) (apply func())

// Loop schedules Work. Implementations must run every apply on the single
// goroutine that owns the State, one at a time.
type Loop interface {
	Go(w Work)
}

// InlineLoop runs work and its apply step immediately on the caller's
// goroutine. Used by direct callers and tests.
type InlineLoop struct {
	Ctx context.Context
}

// Go implements Loop.
func (l InlineLoop) Go(w Work) {
	ctx := l.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if apply := w(ctx); apply != nil {
		apply()
	}
}
