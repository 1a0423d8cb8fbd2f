package scraper

import (
	"context"
	"time"
)

// SessionOptions configures a new browsing session
type SessionOptions struct {
	ViewportWidth  int
	ViewportHeight int
}

// Browser opens isolated browsing sessions. Sessions are never shared
// between extraction attempts.
type Browser interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
}

// Session is a single page in its own browser context. Every wait takes its
// own timeout; the session must be closed by whoever opened it.
type Session interface {
	// Navigate loads url and returns once the network is idle and both the
	// DOMContentLoaded and load events have fired.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Click waits for selector to be attached and clicks its first match.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// WaitForTextNot waits until the element matching selector is absent or
	// its text differs from text.
	WaitForTextNot(ctx context.Context, selector, text string, timeout time.Duration) error

	// WaitForSelector waits until selector matches at least one element.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Content returns the serialized DOM of the page.
	Content(ctx context.Context) (string, error)

	Close() error
}

// minWait is the smallest timeout handed to the browser. Playwright reads
// zero as "no timeout", so an exhausted deadline must never become zero.
const minWait = time.Millisecond

// boundedTimeout shortens timeout to what is left of ctx's deadline
func boundedTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout < minWait {
		return minWait
	}
	return timeout
}

// withStepDeadline bounds a multi-wait step by one deadline. Each wait in the
// step gets only what the earlier waits left over.
func withStepDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, boundedTimeout(ctx, timeout))
}
