//go:build unix

package fdbudget

import "golang.org/x/sys/unix"

// Negotiate raises the process's FD soft limit toward userUlimit (if set),
// then derives a safe batch size from whatever soft limit results.
func Negotiate(requestedBatch uint16, userUlimit *uint64) (Result, error) {
	return negotiateWith(platformLimiter{}, requestedBatch, userUlimit)
}

type platformLimiter struct{}

func (platformLimiter) raise(want uint64) bool {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return false
	}

	rlimit.Cur = want
	if want > rlimit.Max {
		// Raising the hard limit needs privilege: try it, and if that is
		// refused, cap the soft limit at the current hard limit instead.
		raised := unix.Rlimit{Cur: want, Max: want}
		if unix.Setrlimit(unix.RLIMIT_NOFILE, &raised) == nil {
			return true
		}
		rlimit.Cur = rlimit.Max
	}

	return unix.Setrlimit(unix.RLIMIT_NOFILE, &rlimit) == nil
}

func (platformLimiter) soft() (uint64, error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, err
	}
	return rlimit.Cur, nil
}
