// Package rlimits applies POSIX resource limits to the current process.
// Stressor children use them to bound how much damage a payload can do
// and to provoke limit-related failure modes on purpose.
package rlimits

import (
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Limits holds the resource ceilings to apply. Zero fields are left
// untouched.
type Limits struct {
	// CpuSeconds bounds consumed CPU time (RLIMIT_CPU).
	CpuSeconds uint64

	// AddressSpace bounds the virtual address space in bytes
	// (RLIMIT_AS).
	AddressSpace uint64

	// FileSize bounds created file size in bytes (RLIMIT_FSIZE).
	FileSize uint64

	// OpenFiles bounds the file descriptor count (RLIMIT_NOFILE).
	OpenFiles uint64
}

// FromArgs extracts limits from key=value stressor arguments. Unknown
// keys and unparsable values are ignored; limits are opt-in knobs, not
// a validated surface.
func FromArgs(args []string) Limits {
	var l Limits
	for _, a := range args {
		key, val, ok := strings.Cut(a, "=")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "rlimit-cpu":
			l.CpuSeconds = n
		case "rlimit-as":
			l.AddressSpace = n
		case "rlimit-fsize":
			l.FileSize = n
		case "rlimit-nofile":
			l.OpenFiles = n
		}
	}
	return l
}

// Apply sets the configured limits on the calling process. Each limit
// is applied independently; a rejected one is logged and skipped so a
// partially privileged child still gets the rest.
func (l Limits) Apply(log *slog.Logger) {
	set := func(name string, resource int, value uint64) {
		if value == 0 {
			return
		}
		rl := &unix.Rlimit{Cur: value, Max: value}
		if err := unix.Setrlimit(resource, rl); err != nil {
			log.Warn("resource limit rejected", "limit", name, "value", value, "err", err)
			return
		}
		log.Debug("resource limit applied", "limit", name, "value", value)
	}
	set("cpu", unix.RLIMIT_CPU, l.CpuSeconds)
	set("as", unix.RLIMIT_AS, l.AddressSpace)
	set("fsize", unix.RLIMIT_FSIZE, l.FileSize)
	set("nofile", unix.RLIMIT_NOFILE, l.OpenFiles)
}
