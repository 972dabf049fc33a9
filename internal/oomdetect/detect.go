// Package oomdetect confirms kernel OOM kills of supervised children.
// Detection is best-effort diagnostics: it must never block, fail or
// otherwise influence the supervision control flow.
package oomdetect

// Detector answers whether a pid was killed by the kernel OOM killer.
type Detector interface {
	// KilledByOOM reports whether the kernel log records an OOM kill
	// of pid. False on any doubt or error.
	KilledByOOM(pid int) bool
}

type nopDetector struct{}

func (nopDetector) KilledByOOM(int) bool { return false }

// Nop returns a detector for platforms without a readable kernel log.
func Nop() Detector { return nopDetector{} }
