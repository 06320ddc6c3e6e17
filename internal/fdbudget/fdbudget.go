// =============================================================================
// internal/fdbudget/fdbudget.go - FD soft-limit negotiation
// =============================================================================
package fdbudget

import "fmt"

const (
	// AverageBatch is the batch size used when the soft limit is generous
	// or when the oracle is skipped entirely (non-Unix platforms).
	AverageBatch = 3000
	// DefaultSafeCeiling is the soft limit above which AverageBatch is used
	// rather than trying to use the whole limit.
	DefaultSafeCeiling = 8000
	// headroom left below the soft limit for stdio, DNS, logs.
	headroom = 100
)

// Result is the outcome of negotiating a batch size against the process's
// file descriptor soft limit.
type Result struct {
	Batch     uint16
	SoftLimit uint64
	Warnings  []string
}

// limiter abstracts the platform-specific rlimit calls so the negotiation
// algorithm itself is testable without touching the OS.
type limiter interface {
	// raise attempts to set the soft (and hard, where permitted) limit to
	// want. It never returns an error: failures are reported as warnings,
	// per spec - the scan proceeds with whatever the current soft limit is.
	raise(want uint64) (ok bool)
	soft() (uint64, error)
}

func negotiateWith(l limiter, requestedBatch uint16, userUlimit *uint64) (Result, error) {
	var warnings []string

	if userUlimit != nil {
		if !l.raise(*userUlimit) {
			warnings = append(warnings, fmt.Sprintf("failed to raise file descriptor limit to %d, proceeding with current limit", *userUlimit))
		}
	}

	soft, err := l.soft()
	if err != nil {
		return Result{}, fmt.Errorf("fdbudget: reading soft limit: %w", err)
	}

	batch, advise := InferBatchSize(requestedBatch, soft)
	if advise != "" {
		warnings = append(warnings, advise)
	}

	return Result{Batch: batch, SoftLimit: soft, Warnings: warnings}, nil
}

// InferBatchSize derives an effective batch size from a requested batch and
// the current FD soft limit, per the algorithm in the spec. The returned
// string is a non-fatal advisory message, empty when there is nothing to say.
func InferBatchSize(requested uint16, soft uint64) (uint16, string) {
	req := uint64(requested)

	if soft >= req+2 {
		return requested, fmt.Sprintf("your file descriptor limit is %d: you could raise --batch-size up to %d", soft, soft-2)
	}

	if soft < DefaultSafeCeiling && soft < AverageBatch {
		return uint16(soft / 2), ""
	}

	if soft > DefaultSafeCeiling {
		return AverageBatch, ""
	}

	return uint16(soft - headroom), ""
}
