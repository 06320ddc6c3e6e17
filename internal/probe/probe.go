// =============================================================================
// internal/probe/probe.go - Single timed TCP connect with retries
// =============================================================================
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/bryanCE/portscan/internal/socketiter"
)

// Kind classifies how a probe finished.
type Kind int

const (
	Open Kind = iota
	Closed
	Fatal
)

// Outcome is the tagged result of probing a single target.
type Outcome struct {
	Kind   Kind
	Target socketiter.Target
	Detail string // populated for Closed and Fatal
}

// Probe attempts to connect to target up to tries times, each bounded by
// timeout. A successful connection is shut down immediately; we only care
// whether the three-way handshake completes.
func Probe(ctx context.Context, target socketiter.Target, timeout time.Duration, tries int) Outcome {
	if tries < 1 {
		tries = 1
	}

	addr := net.JoinHostPort(target.IP.String(), fmt.Sprintf("%d", target.Port))
	dialer := net.Dialer{Timeout: timeout}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		conn, err := dialConn(ctx, dialer, addr, timeout)
		if err == nil {
			_ = conn.Close()
			return Outcome{Kind: Open, Target: target}
		}

		if isTooManyOpenFiles(err) {
			return Outcome{
				Kind:   Fatal,
				Target: target,
				Detail: "too many open files: reduce --batch-size",
			}
		}

		lastErr = err
		if attempt == tries {
			return Outcome{
				Kind:   Closed,
				Target: target,
				Detail: lastErr.Error() + " " + target.IP.String(),
			}
		}
	}

	// Unreachable: the loop always returns on its final iteration.
	panic("probe: retry loop exited without a result")
}

func dialConn(ctx context.Context, dialer net.Dialer, addr string, timeout time.Duration) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dialer.DialContext(dialCtx, "tcp", addr)
}

// isTooManyOpenFiles reports whether err indicates file descriptor
// exhaustion (EMFILE/ENFILE). We first try to unwrap to the platform errno,
// falling back to a case-insensitive substring match for the rare case the
// error doesn't carry one (e.g. wrapped differently on some platforms).
func isTooManyOpenFiles(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.EMFILE || errno == syscall.ENFILE {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "too many open files")
}
