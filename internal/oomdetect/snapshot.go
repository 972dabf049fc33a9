package oomdetect

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// snapshot writes the scanned kernel log tail to a compressed artifact
// for postmortem inspection. Purely diagnostic; callers ignore errors
// beyond a debug line.
func (d *kmsgDetector) snapshot(pid int, tail string) (string, error) {
	name := fmt.Sprintf("stresser-oom-%d-%d.log.zst", pid, time.Now().Unix())
	path := filepath.Join(d.snapshotDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write([]byte(tail)); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return path, nil
}
