package wlclient

import (
	"context"
)

// roundTrip runs fn on the event-loop goroutine and waits for it to
// finish. The dispatcher blocks in a socket read between events, so after
// queueing the request we issue a wl_display.sync: the compositor's reply
// wakes the loop, which drains the queue before the next dispatch.
// Requests are served in submission order; a caller whose context expires
// abandons the request without blocking the loop.
func (c *Client) roundTrip(ctx context.Context, fn func()) error {
	if c.closed.Load() {
		return ErrClosed
	}

	done := make(chan struct{})
	select {
	case c.requests <- func() {
		fn()
		close(done)
	}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if _, err := c.display.Sync(); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The closure may still run later; the caller just stops waiting.
		return ctx.Err()
	}
}
