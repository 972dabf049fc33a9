package stressors

import (
	"context"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/stressforge/stresser/internal/pick"
	"github.com/stressforge/stresser/internal/supervise"
)

func init() {
	Register("schedmix", schedMixStressor)
}

// posture is one scheduling configuration the mix cycles through.
type posture struct {
	name string
	nice int
}

var postures = []posture{
	{name: "nice-high", nice: 19},
	{name: "nice-mid", nice: 10},
	{name: "nice-low", nice: 5},
	{name: "nice-none", nice: 0},
}

// schedMixStressor flips the process between scheduling postures,
// never repeating the previous one, and yields aggressively in between
// to churn the run queue. Setpriority failures are expected when the
// previous posture lowered our privileges to raise priority back; the
// mix keeps going regardless.
func schedMixStressor(ctx context.Context, run *supervise.Run) int {
	picker, err := pick.New(postures)
	if err != nil {
		return 1
	}
	prev := pick.None
	for {
		select {
		case <-ctx.Done():
			return 0
		default:
		}
		if !run.KeepGoing() {
			return 0
		}
		prev = picker.Next(prev)
		p := picker.At(prev)
		_ = unix.Setpriority(unix.PRIO_PROCESS, 0, p.nice)
		for i := 0; i < 64; i++ {
			runtime.Gosched()
		}
		run.Ops.Inc()
	}
}
