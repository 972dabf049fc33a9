package oomdetect

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/stressforge/stresser/internal/artifacts"
)

const defaultKmsgPath = "/dev/kmsg"

// kmsgTailLimit caps how much of the kernel log one scan keeps in
// memory. Records beyond the tail cannot describe a child that just
// died.
const kmsgTailLimit = 512 * 1024

type kmsgDetector struct {
	path        string
	snapshotDir string
	log         *slog.Logger
}

// New returns a detector that scans the kernel log for OOM kill
// records. When the log device cannot be opened (common when
// unprivileged) a no-op detector is returned instead. Snapshots land
// in the artifact directory.
func New(log *slog.Logger) Detector {
	dir, err := artifacts.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	return newKmsg(defaultKmsgPath, dir, log)
}

func newKmsg(path, snapshotDir string, log *slog.Logger) Detector {
	if log == nil {
		log = slog.Default()
	}
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		log.Debug("kernel log unavailable, oom detection disabled", "path", path, "err", err)
		return Nop()
	}
	unix.Close(fd)
	return &kmsgDetector{path: path, snapshotDir: snapshotDir, log: log}
}

func (d *kmsgDetector) KilledByOOM(pid int) bool {
	tail, err := d.readTail()
	if err != nil {
		d.log.Debug("kernel log scan failed", "err", err)
		return false
	}
	if !oomKillRecorded(tail, pid) {
		return false
	}
	if path, err := d.snapshot(pid, tail); err != nil {
		d.log.Debug("kernel log snapshot failed", "err", err)
	} else {
		d.log.Debug("kernel log snapshot written", "path", path)
	}
	return true
}

// readTail drains the kernel log without blocking and returns its tail.
// The read is done with raw syscalls: a nonblocking os.File would park
// in the runtime poller waiting for new records instead of returning.
// /dev/kmsg hands out one record per read; a plain file (tests) comes
// in arbitrary chunks.
func (d *kmsgDetector) readTail() (string, error) {
	fd, err := unix.Open(d.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return "", err
	}
	defer unix.Close(fd)

	var tail []byte
	buf := make([]byte, 8192)
	for {
		n, err := unix.Read(fd, buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			// no more records
			return string(tail), nil
		case err == unix.EPIPE:
			// record overwritten under us, keep draining
			continue
		case err != nil:
			return string(tail), err
		case n == 0:
			return string(tail), nil
		}
		tail = append(tail, buf[:n]...)
		if len(tail) > kmsgTailLimit {
			tail = tail[len(tail)-kmsgTailLimit:]
		}
	}
}

// oomKillRecorded scans kernel log records for an OOM kill of pid.
// Matches both the classic "Out of memory: Killed process <pid>" line
// and the structured "oom-kill:...,pid=<pid>," form.
func oomKillRecorded(tail string, pid int) bool {
	killed := fmt.Sprintf("Killed process %d ", pid)
	structured := fmt.Sprintf(",pid=%d,", pid)
	for _, line := range strings.Split(tail, "\n") {
		if strings.Contains(line, killed) {
			return true
		}
		if strings.Contains(line, "oom-kill:") && strings.Contains(line, structured) {
			return true
		}
	}
	return false
}
