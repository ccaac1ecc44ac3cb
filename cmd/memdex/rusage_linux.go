//go:build linux

package main

import "golang.org/x/sys/unix"

// maxRSS returns the process peak resident set size in bytes, or 0 if it
// cannot be read. Linux reports Maxrss in kilobytes.
func maxRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return ru.Maxrss * 1024
}
