// Package rlimit raises the process's open-file soft limit ahead of a
// write pass that will hold many input and output files open at once.
package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// RaiseOpenFiles ensures the soft RLIMIT_NOFILE is at least n, raising it
// if the current soft limit falls short. It never lowers an existing
// higher limit. Returns the resulting soft limit.
func RaiseOpenFiles(n int) (int, error) {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, fmt.Errorf("rlimit: getrlimit: %w", err)
	}

	if rlim.Cur >= uint64(n) {
		return int(rlim.Cur), nil
	}

	rlim.Cur = uint64(n)
	if rlim.Max != unix.RLIM_INFINITY && rlim.Cur > rlim.Max {
		rlim.Cur = rlim.Max
	}

	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, fmt.Errorf("rlimit: setrlimit to %d: %w", rlim.Cur, err)
	}

	return int(rlim.Cur), nil
}

// ForPass computes the soft-limit target for a pass expected to hold n
// files open concurrently: 2n + 20, per the core's resource-discipline
// rule.
func ForPass(n int) int {
	return 2*n + 20
}
