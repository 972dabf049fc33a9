// Package oomadj sets a process's kill-priority hint so supervised
// stressor children are reclaimed first under memory pressure. The
// whole facility is advisory: every failure path degrades to a debug
// log line and a no-op.
package oomadj

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Modern and legacy score values for "kill me first" and "default".
const (
	scoreKillable = 1000
	scoreDefault  = 0

	legacyKillable = 15
	legacyDefault  = 0
)

// Adjuster writes OOM score hints under a proc filesystem root.
// The zero value targets the real /proc.
type Adjuster struct {
	// ProcRoot overrides /proc, used by tests.
	ProcRoot string

	Log *slog.Logger
}

// Apply makes pid preferentially killable (or resets it to default).
// Pid 0 targets the calling process. The top-level supervisor is never
// forced killable regardless of the flag, so memory pressure cannot
// take out the supervision loop itself. Failures of both the modern
// and the legacy interface are swallowed: the hint is advisory.
func (a *Adjuster) Apply(pid int, killable bool, topLevel bool) {
	if topLevel {
		killable = false
	}

	score := scoreDefault
	if killable {
		score = scoreKillable
	}
	if err := a.writeScore(pid, "oom_score_adj", score); err == nil {
		return
	} else {
		a.logger().Debug("oom_score_adj unavailable, trying legacy interface",
			"pid", pid, "err", err)
	}

	legacy := legacyDefault
	if killable {
		legacy = legacyKillable
	}
	if err := a.writeScore(pid, "oom_adj", legacy); err != nil {
		a.logger().Debug("oom adjustment unavailable", "pid", pid, "err", err)
	}
}

// Score reads the current oom_score_adj of pid (0 for self).
func (a *Adjuster) Score(pid int) (int, error) {
	data, err := os.ReadFile(a.procPath(pid, "oom_score_adj"))
	if err != nil {
		return 0, err
	}
	data = bytes.TrimSuffix(data, []byte("\n"))
	score, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("oom_score_adj is not a number: %w", err)
	}
	return score, nil
}

// writeScore opens without O_CREATE: proc files either exist or the
// interface is absent, and silently creating a plain file would mask
// that.
func (a *Adjuster) writeScore(pid int, file string, score int) error {
	f, err := os.OpenFile(a.procPath(pid, file), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(strconv.Itoa(score)))
	return err
}

func (a *Adjuster) procPath(pid int, file string) string {
	root := a.ProcRoot
	if root == "" {
		root = "/proc"
	}
	pidDir := "self"
	if pid != 0 {
		pidDir = strconv.Itoa(pid)
	}
	return filepath.Join(root, pidDir, file)
}

func (a *Adjuster) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}
