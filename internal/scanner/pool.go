// =============================================================================
// internal/scanner/pool.go - Bounded in-flight completion queue
// =============================================================================
package scanner

import (
	"context"
	"time"

	"github.com/bryanCE/portscan/internal/probe"
	"github.com/bryanCE/portscan/internal/socketiter"
)

// pool is the Go stand-in for RustScan's FuturesUnordered: a bounded set of
// in-flight probes, each reporting its outcome onto a shared channel as it
// finishes. The scheduler is the sole reader and the sole place that tracks
// how many probes are outstanding.
type pool struct {
	results  chan probe.Outcome
	inFlight int
}

func newPool(capacity int) *pool {
	return &pool{
		// Buffered to capacity so a probe can never block trying to report
		// its outcome, even if the scheduler stops draining (fatal abort).
		results: make(chan probe.Outcome, capacity),
	}
}

// spawn starts a new probe goroutine. Callers must not spawn more than the
// pool's capacity without first draining with next.
func (p *pool) spawn(ctx context.Context, target socketiter.Target, timeout time.Duration, tries int) {
	p.inFlight++
	go func() {
		p.results <- probe.Probe(ctx, target, timeout, tries)
	}()
}

// next blocks until any in-flight probe completes.
func (p *pool) next() probe.Outcome {
	outcome := <-p.results
	p.inFlight--
	return outcome
}

// len reports how many probes are currently in flight.
func (p *pool) len() int {
	return p.inFlight
}
