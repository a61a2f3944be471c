package ui

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nchapman/onboard/internal/progress"
	"golang.org/x/time/rate"
)

// SnapshotRelay coalesces progress snapshots so a renderer sees at most one
// per interval. Publish never blocks; intermediate snapshots are dropped and
// the latest one is always delivered.
type SnapshotRelay struct {
	limiter *rate.Limiter
	latest  atomic.Pointer[progress.Snapshot]
	notify  chan struct{}
}

func NewSnapshotRelay(interval time.Duration) *SnapshotRelay {
	return &SnapshotRelay{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		notify:  make(chan struct{}, 1),
	}
}

func (r *SnapshotRelay) Publish(s progress.Snapshot) {
	r.latest.Store(&s)
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run delivers snapshots to send until ctx is done.
func (r *SnapshotRelay) Run(ctx context.Context, send func(progress.Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.notify:
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		if s := r.latest.Load(); s != nil {
			send(*s)
		}
	}
}
