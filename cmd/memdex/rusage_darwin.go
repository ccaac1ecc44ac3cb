//go:build darwin

package main

import "golang.org/x/sys/unix"

// maxRSS returns the process peak resident set size in bytes, or 0 if it
// cannot be read. Darwin reports Maxrss in bytes already.
func maxRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return ru.Maxrss
}
