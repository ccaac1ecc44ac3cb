//go:build !linux && !darwin

package main

// maxRSS is unavailable on this platform.
func maxRSS() int64 {
	return 0
}
