// =============================================================================
// internal/scanner/scanner.go - Bounded, pipelined connect-scan scheduler
// =============================================================================
package scanner

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/netip"
	"time"

	"github.com/bryanCE/portscan/internal/fdbudget"
	"github.com/bryanCE/portscan/internal/portstrategy"
	"github.com/bryanCE/portscan/internal/probe"
	"github.com/bryanCE/portscan/internal/socketiter"
)

// OnOpen is invoked synchronously from the scheduler's goroutine as each
// open socket is discovered, in completion order. It is never called in
// quiet mode regardless of whether the caller supplied one.
type OnOpen func(socketiter.Target)

// Config is the immutable configuration for a single scan. Once a Scanner
// is constructed from it, the Scanner owns it for the scan's lifetime.
type Config struct {
	IPs          []netip.Addr
	Strategy     portstrategy.Strategy
	ExcludePorts []uint16
	Timeout      time.Duration
	Tries        int
	BatchSize    uint16
	UserUlimit   *uint64
	Quiet        bool
	Accessible   bool
	OnOpen       OnOpen
	Logger       *log.Logger
}

// Scanner runs a single bounded connect scan.
type Scanner struct {
	ips       []netip.Addr
	ports     []uint16
	timeout   time.Duration
	tries     int
	batchSize uint16
	onOpen    OnOpen
	logger    *log.Logger
	warnings  []string
}

// New validates cfg and negotiates an effective batch size against the
// host's FD soft limit. tries=0 is coerced to 1, per spec.
func New(cfg Config) (*Scanner, error) {
	if len(cfg.IPs) == 0 {
		return nil, &ConfigError{Reason: "no target IPs supplied"}
	}
	if cfg.Strategy == nil {
		return nil, &ConfigError{Reason: "no port strategy supplied"}
	}

	ports := subtractExcluded(cfg.Strategy.Order(), cfg.ExcludePorts)
	if len(ports) == 0 {
		return nil, &ConfigError{Reason: "port set is empty after applying excludes"}
	}

	tries := cfg.Tries
	if tries < 1 {
		tries = 1
	}

	result, err := fdbudget.Negotiate(cfg.BatchSize, cfg.UserUlimit)
	if err != nil {
		return nil, fmt.Errorf("scanner: negotiating batch size: %w", err)
	}

	// Progress logging is opt-in (--debug): a nil Logger means discard, not
	// log.Default(), so the scheduler stays silent by default and in
	// --quiet mode.
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	onOpen := cfg.OnOpen
	if cfg.Quiet {
		onOpen = nil
	}

	return &Scanner{
		ips:       cfg.IPs,
		ports:     ports,
		timeout:   cfg.Timeout,
		tries:     tries,
		batchSize: result.Batch,
		onOpen:    onOpen,
		logger:    logger,
		warnings:  result.Warnings,
	}, nil
}

// Warnings returns any advisories produced while negotiating the batch
// size (e.g. a failed attempt to raise the FD limit).
func (s *Scanner) Warnings() []string {
	return s.warnings
}

// Run drains the full (ip, port) target space, returning every socket that
// accepted a connection, in completion order. It aborts immediately with a
// *FatalError if the OS reports descriptor exhaustion.
func (s *Scanner) Run(ctx context.Context) ([]socketiter.Target, error) {
	iter := socketiter.New(s.ips, s.ports)

	s.logger.Printf("starting scan: batch=%d ips=%d ports=%d targets=%d",
		s.batchSize, len(s.ips), len(s.ports), len(s.ips)*len(s.ports))

	p := newPool(int(s.batchSize))
	errorDigest := make(map[string]struct{})
	errorCap := len(s.ips) * 1000

	var open []socketiter.Target

	for i := 0; i < int(s.batchSize); i++ {
		target, ok := iter.Next()
		if !ok {
			break
		}
		p.spawn(ctx, target, s.timeout, s.tries)
	}

	for p.len() > 0 {
		outcome := p.next()

		if target, ok := iter.Next(); ok {
			p.spawn(ctx, target, s.timeout, s.tries)
		}

		switch outcome.Kind {
		case probe.Open:
			open = append(open, outcome.Target)
			if s.onOpen != nil {
				s.onOpen(outcome.Target)
			}
		case probe.Closed:
			if len(errorDigest) < errorCap {
				errorDigest[outcome.Detail] = struct{}{}
			}
		case probe.Fatal:
			return open, &FatalError{Detail: outcome.Detail}
		}
	}

	s.logger.Printf("scan complete: open=%d distinct errors=%d", len(open), len(errorDigest))
	return open, nil
}

// subtractExcluded returns ordered with every port in excluded removed,
// preserving ordered's relative order.
func subtractExcluded(ordered []uint16, excluded []uint16) []uint16 {
	if len(excluded) == 0 {
		return ordered
	}
	skip := make(map[uint16]struct{}, len(excluded))
	for _, p := range excluded {
		skip[p] = struct{}{}
	}

	out := make([]uint16, 0, len(ordered))
	for _, p := range ordered {
		if _, excl := skip[p]; excl {
			continue
		}
		out = append(out, p)
	}
	return out
}
