package termgath

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/stressforge/stresser/api"
)

// TerminalGatherer prints run progress to stdout.
type TerminalGatherer struct {
	StartedAt time.Time
}

func New() *TerminalGatherer { return &TerminalGatherer{StartedAt: time.Now()} }

var (
	okColor   = color.New(color.FgGreen)
	badColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
)

func (t *TerminalGatherer) StartRun(systemInfo string) {
	fmt.Println("== Stress run started ==")
	if systemInfo != "" {
		fmt.Println(systemInfo)
	}
}

func (t *TerminalGatherer) StartStressor(name string, workers int) {
	fmt.Printf("-> %s started (%d workers)\n", name, workers)
}

func (t *TerminalGatherer) FinishStressor(name string, result *api.StressorResult) {
	fmt.Printf("<- %s finished\n", name)
	if result == nil {
		return
	}
	fmt.Printf("   ops=%d wall=%dms restarts=%d segv=%d bus=%d oom=%d\n",
		result.Ops, result.WallMillis, result.Restarts, result.Segvs, result.Buses, result.Ooms)
	switch {
	case result.GaveUp:
		warnColor.Printf("   gave up waiting for child\n")
	case result.Failed():
		badColor.Printf("   exit=%d\n", result.ExitCode)
	case result.OomKilled:
		okColor.Printf("   oom killed (acceptable)\n")
	default:
		okColor.Printf("   ok\n")
	}
}

func (t *TerminalGatherer) FinishRunWithInternalError(msg string) {
	badColor.Printf("== Internal error: %s ==\n", msg)
}

func (t *TerminalGatherer) FinishRunWithoutError() {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	fmt.Printf("== Stress run finished in %s ==\n", dur)
}
