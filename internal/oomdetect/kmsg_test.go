package oomdetect

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeKmsg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kmsg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleLog = `6,1001,100,-;systemd[1]: Started something.
3,1002,200,-;oom-kill:constraint=CONSTRAINT_NONE,nodemask=(null),cpuset=/,mems_allowed=0,task=vm,pid=4242,uid=1000
3,1003,201,-;Out of memory: Killed process 4242 (vm) total-vm:1048576kB, anon-rss:524288kB
6,1004,300,-;audit: type=1131 msg=something else
`

func TestKilledByOOMMatchesKilledProcessLine(t *testing.T) {
	d := newKmsg(fakeKmsg(t, sampleLog), t.TempDir(), discard())
	assert.True(t, d.KilledByOOM(4242))
}

func TestKilledByOOMMatchesStructuredRecord(t *testing.T) {
	log := `3,1,1,-;oom-kill:constraint=CONSTRAINT_MEMCG,task=hog,pid=777,uid=0` + "\n"
	d := newKmsg(fakeKmsg(t, log), t.TempDir(), discard())
	assert.True(t, d.KilledByOOM(777))
}

func TestKilledByOOMIgnoresOtherPids(t *testing.T) {
	d := newKmsg(fakeKmsg(t, sampleLog), t.TempDir(), discard())
	assert.False(t, d.KilledByOOM(9999))
	// 424 is a prefix of 4242 and must not match
	assert.False(t, d.KilledByOOM(424))
}

func TestKilledByOOMEmptyLog(t *testing.T) {
	d := newKmsg(fakeKmsg(t, ""), t.TempDir(), discard())
	assert.False(t, d.KilledByOOM(4242))
}

func TestSnapshotWrittenOnDetection(t *testing.T) {
	snapDir := t.TempDir()
	d := newKmsg(fakeKmsg(t, sampleLog), snapDir, discard())

	require.True(t, d.KilledByOOM(4242))

	matches, err := filepath.Glob(filepath.Join(snapDir, "stresser-oom-4242-*.log.zst"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	tail, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, sampleLog, string(tail))
}

func TestUnreadableLogFallsBackToNop(t *testing.T) {
	d := newKmsg(filepath.Join(t.TempDir(), "missing"), t.TempDir(), discard())
	assert.False(t, d.KilledByOOM(1))
}

func TestNopDetector(t *testing.T) {
	assert.False(t, Nop().KilledByOOM(os.Getpid()))
}
