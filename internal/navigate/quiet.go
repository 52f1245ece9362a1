package navigate

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// settleWindow is how long the request count must stay at zero before the
// network is considered quiet.
const settleWindow = 500 * time.Millisecond

// waitQuiet waits until no requests have been in flight for settleWindow,
// bounded by timeout. A timeout is not an error to callers that treat
// quiescence as best-effort; it is returned only so they can log it.
func waitQuiet(sessionCtx context.Context, timeout time.Duration) error {
	tracker := newInflightTracker()
	chromedp.ListenTarget(sessionCtx, tracker.handle)

	deadline := time.After(timeout)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var quietSince time.Time
	for {
		select {
		case <-sessionCtx.Done():
			return sessionCtx.Err()
		case <-deadline:
			return context.DeadlineExceeded
		case now := <-tick.C:
			if tracker.count() > 0 {
				quietSince = time.Time{}
				continue
			}
			if quietSince.IsZero() {
				quietSince = now
				continue
			}
			if now.Sub(quietSince) >= settleWindow {
				return nil
			}
		}
	}
}

type inflightTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
}

func newInflightTracker() *inflightTracker {
	return &inflightTracker{inflight: make(map[network.RequestID]struct{})}
}

func (t *inflightTracker) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.mu.Lock()
		t.inflight[e.RequestID] = struct{}{}
		t.mu.Unlock()
	case *network.EventLoadingFinished:
		t.mu.Lock()
		delete(t.inflight, e.RequestID)
		t.mu.Unlock()
	case *network.EventLoadingFailed:
		t.mu.Lock()
		delete(t.inflight, e.RequestID)
		t.mu.Unlock()
	}
}

func (t *inflightTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
