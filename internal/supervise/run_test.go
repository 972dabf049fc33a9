package supervise_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressforge/stresser/internal/supervise"
)

func TestNewRunDeadline(t *testing.T) {
	r := supervise.NewRun("cpu", []string{"load=90"}, time.Minute)
	require.NotNil(t, r.Ops)
	assert.False(t, r.Deadline.IsZero())
	assert.True(t, r.KeepGoing())
	assert.Greater(t, r.Remaining(), 50*time.Second)

	unbounded := supervise.NewRun("cpu", nil, 0)
	assert.True(t, unbounded.Deadline.IsZero())
	assert.True(t, unbounded.KeepGoing())
}

func TestRunStopsAtDeadline(t *testing.T) {
	r := supervise.NewRun("cpu", nil, time.Minute)
	r.Deadline = time.Now().Add(-time.Second)

	assert.False(t, r.KeepGoing())
	assert.Equal(t, time.Duration(0), r.Remaining())
}

func TestRunContFlag(t *testing.T) {
	r := supervise.NewRun("cpu", nil, time.Minute)
	r.Cont = &atomic.Bool{}

	assert.False(t, r.KeepGoing())
	r.Cont.Store(true)
	assert.True(t, r.KeepGoing())
	r.Cont.Store(false)
	assert.False(t, r.KeepGoing())
}
