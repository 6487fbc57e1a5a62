package gateway

import (
	"log"
	"sync"
)

// pendingRequest is a caller parked until the in-flight refresh resolves.
// resume receives the new access token, or the refresh error.
type pendingRequest struct {
	resume func(token string, err error)
}

// refreshCoordinator guarantees that at most one token refresh is in flight
// per gateway. Requests that need a token while a refresh is running are
// parked in arrival order and resumed by whoever drives the refresh.
type refreshCoordinator struct {
	mu       sync.Mutex
	inFlight bool
	queue    []*pendingRequest
}

// tryBeginRefresh either claims the refresh (returning true, the caller must
// then call completeRefresh) or parks p behind the refresh already running.
func (c *refreshCoordinator) tryBeginRefresh(p *pendingRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inFlight {
		c.inFlight = true
		refreshInFlight.Set(1)
		return true
	}

	c.queue = append(c.queue, p)
	queuedRequests.Inc()
	return false
}

// completeRefresh resumes parked requests oldest first, including any that
// are parked while draining, and ends the cycle once the queue is empty.
func (c *refreshCoordinator) completeRefresh(token string, err error) {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.inFlight = false
			refreshInFlight.Set(0)
			c.mu.Unlock()
			return
		}
		p := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.resume(p, token, err)
	}
}

func (c *refreshCoordinator) resume(p *pendingRequest, token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic while resuming queued request: %v", r)
		}
	}()
	p.resume(token, err)
}

func (c *refreshCoordinator) refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *refreshCoordinator) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
