package stressors

import (
	"context"

	"github.com/stressforge/stresser/internal/supervise"
)

func init() {
	Register("cpu", cpuStressor)
}

// cpuStressor burns cycles until the run budget is gone. The inner
// batch keeps the cancellation checks off the hot path.
func cpuStressor(ctx context.Context, run *supervise.Run) int {
	x := uint64(0x9e3779b97f4a7c15)
	for {
		select {
		case <-ctx.Done():
			return 0
		default:
		}
		if !run.KeepGoing() {
			return 0
		}
		for i := 0; i < 1<<16; i++ {
			x ^= x << 13
			x ^= x >> 7
			x ^= x << 17
		}
		run.Ops.Inc()
	}
}
