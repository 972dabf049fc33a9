package stressors

import (
	"context"
	"time"

	"github.com/stressforge/stresser/internal/supervise"
)

func init() {
	Register("vm", vmStressor)
}

// vmStressor grows the process's memory in fixed chunks, touching every
// page so the kernel must actually back them. Under a memory limit this
// is the payload that draws the OOM killer. Args: bytes=<total>,
// chunk=<alloc size>, sleep=<pause between allocs>.
func vmStressor(ctx context.Context, run *supervise.Run) int {
	total := argInt(run.Args, "bytes", 256<<20)
	chunk := argInt(run.Args, "chunk", 4<<10)
	pause := argDuration(run.Args, "sleep", time.Millisecond)
	if chunk <= 0 {
		chunk = 4 << 10
	}

	const pageSize = 4096
	var hoard [][]byte
	for allocated := int64(0); allocated < total; allocated += chunk {
		select {
		case <-ctx.Done():
			return 0
		default:
		}
		if !run.KeepGoing() {
			return 0
		}
		buf := make([]byte, chunk)
		for i := 0; i < len(buf); i += pageSize {
			buf[i] = byte(i)
		}
		hoard = append(hoard, buf)
		run.Ops.Inc()
		if pause > 0 {
			time.Sleep(pause)
		}
	}
	// hold the hoard until the budget runs out
	for run.KeepGoing() {
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(50 * time.Millisecond):
		}
	}
	_ = hoard
	return 0
}
