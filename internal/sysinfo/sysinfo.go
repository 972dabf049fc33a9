// Package sysinfo produces a one-line host fingerprint for run reports.
package sysinfo

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Describe returns kernel and hardware identity of the host.
func Describe() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return fmt.Sprintf("%s/%s, %d cpus", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	}
	return fmt.Sprintf("%s %s %s (%s), %d cpus",
		field(uts.Sysname[:]), field(uts.Release[:]), field(uts.Version[:]),
		field(uts.Machine[:]), runtime.NumCPU())
}

func field(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
