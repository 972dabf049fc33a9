package stressors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stressforge/stresser/internal/supervise"
)

func TestBuiltinsRegistered(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "cpu")
	assert.Contains(t, names, "vm")
	assert.Contains(t, names, "schedmix")
	assert.IsIncreasing(t, names)

	for _, name := range names {
		fn, ok := Lookup(name)
		assert.True(t, ok)
		assert.NotNil(t, fn)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("no-such-stressor")
	assert.False(t, ok)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	noop := func(context.Context, *supervise.Run) int { return 0 }
	Register("registry-test-dup", noop)
	assert.Panics(t, func() { Register("registry-test-dup", noop) })
}

func TestArgHelpers(t *testing.T) {
	args := []string{"bytes=1048576", "sleep=5ms", "label=hot", "bad=x"}

	assert.Equal(t, "hot", argValue(args, "label", "cold"))
	assert.Equal(t, "cold", argValue(args, "missing", "cold"))

	assert.EqualValues(t, 1048576, argInt(args, "bytes", 0))
	assert.EqualValues(t, 7, argInt(args, "bad", 7), "unparsable value falls back")
	assert.EqualValues(t, 7, argInt(args, "missing", 7))

	assert.Equal(t, 5*time.Millisecond, argDuration(args, "sleep", time.Second))
	assert.Equal(t, time.Second, argDuration(args, "bad", time.Second))
}

func TestCpuStressorHonoursBudget(t *testing.T) {
	run := supervise.NewRun("cpu", nil, 50*time.Millisecond)
	code := cpuStressor(context.Background(), run)

	assert.Equal(t, 0, code)
	assert.Positive(t, run.Ops.Value())
}

func TestVmStressorAllocatesAndReturns(t *testing.T) {
	run := supervise.NewRun("vm", []string{"bytes=262144", "chunk=4096", "sleep=0s"}, 200*time.Millisecond)
	code := vmStressor(context.Background(), run)

	assert.Equal(t, 0, code)
	assert.EqualValues(t, 64, run.Ops.Value(), "one op per chunk")
}

func TestVmStressorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := supervise.NewRun("vm", []string{"sleep=0s"}, time.Minute)
	code := vmStressor(ctx, run)
	assert.Equal(t, 0, code)
}

func TestSchedMixNeverRepeatsPosture(t *testing.T) {
	run := supervise.NewRun("schedmix", nil, 50*time.Millisecond)
	code := schedMixStressor(context.Background(), run)

	assert.Equal(t, 0, code)
	assert.Positive(t, run.Ops.Value())
}
