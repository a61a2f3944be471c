package pull

import (
	"io"
	"time"
)

// idleReader calls onIdle when no bytes have been read for timeout. The
// callback is expected to unblock the pending Read (by cancelling the
// request or closing the body).
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newIdleReader(r io.Reader, timeout time.Duration, onIdle func()) *idleReader {
	return &idleReader{
		r:       r,
		timeout: timeout,
		timer:   time.AfterFunc(timeout, onIdle),
	}
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	switch {
	case err != nil:
		// The stream is over; a late timer must not cancel a drained pull.
		r.timer.Stop()
	case n > 0:
		r.timer.Reset(r.timeout)
	}
	return n, err
}

func (r *idleReader) Stop() {
	r.timer.Stop()
}
