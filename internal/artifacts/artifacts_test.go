package artifacts_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressforge/stresser/internal/artifacts"
)

func TestDirHonoursXdgStateHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)

	dir, err := artifacts.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "stresser"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()

	base := time.Now().Add(-time.Hour)
	var paths []string
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, "stresser-oom-1-"+string(rune('a'+i))+".log.zst")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(p, base, base.Add(time.Duration(i)*time.Minute)))
		paths = append(paths, p)
	}
	// an unrelated file must never be touched
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	require.NoError(t, artifacts.Prune(dir, "stresser-oom-*.log.zst", 2))

	assert.NoFileExists(t, paths[0])
	assert.NoFileExists(t, paths[1])
	assert.NoFileExists(t, paths[2])
	assert.FileExists(t, paths[3])
	assert.FileExists(t, paths[4])
	assert.FileExists(t, other)
}

func TestPruneUnderKeepIsNoop(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "stresser-oom-1-x.log.zst")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	require.NoError(t, artifacts.Prune(dir, "stresser-oom-*.log.zst", 2))
	assert.FileExists(t, p)
}
