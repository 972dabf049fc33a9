package oomadj_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressforge/stresser/internal/oomadj"
)

func newAdjuster(t *testing.T) (*oomadj.Adjuster, string) {
	t.Helper()
	root := t.TempDir()
	return &oomadj.Adjuster{
		ProcRoot: root,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, root
}

func seedProc(t *testing.T, root, pidDir string, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, pidDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("0\n"), 0o644))
	}
	return dir
}

func TestApplyMarksChildKillable(t *testing.T) {
	adj, root := newAdjuster(t)
	dir := seedProc(t, root, "4242", "oom_score_adj")

	adj.Apply(4242, true, false)

	data, err := os.ReadFile(filepath.Join(dir, "oom_score_adj"))
	require.NoError(t, err)
	assert.Equal(t, "1000", string(data))

	score, err := adj.Score(4242)
	require.NoError(t, err)
	assert.Equal(t, 1000, score)
}

func TestApplyResetsToDefault(t *testing.T) {
	adj, root := newAdjuster(t)
	dir := seedProc(t, root, "4242", "oom_score_adj")

	adj.Apply(4242, true, false)
	adj.Apply(4242, false, false)

	data, err := os.ReadFile(filepath.Join(dir, "oom_score_adj"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestApplyTopLevelIsNeverKillable(t *testing.T) {
	adj, root := newAdjuster(t)
	dir := seedProc(t, root, "self", "oom_score_adj")

	adj.Apply(0, true, true)

	data, err := os.ReadFile(filepath.Join(dir, "oom_score_adj"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestApplyFallsBackToLegacyInterface(t *testing.T) {
	adj, root := newAdjuster(t)
	dir := seedProc(t, root, "99", "oom_adj")

	adj.Apply(99, true, false)

	data, err := os.ReadFile(filepath.Join(dir, "oom_adj"))
	require.NoError(t, err)
	assert.Equal(t, "15", string(data))
}

func TestApplyMissingInterfaceIsSilent(t *testing.T) {
	adj, root := newAdjuster(t)
	seedProc(t, root, "7") // pid dir exists but carries neither file

	assert.NotPanics(t, func() { adj.Apply(7, true, false) })

	// nothing was created behind the kernel's back
	entries, err := os.ReadDir(filepath.Join(root, "7"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
