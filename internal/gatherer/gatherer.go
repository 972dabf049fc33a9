// Package gatherer streams stress-run progress to whoever is watching:
// a terminal, a NATS inbox or an SQS queue.
package gatherer

import "github.com/stressforge/stresser/api"

// Gatherer receives progress of one stress run. Implementations must
// not block the run on delivery problems.
type Gatherer interface {
	StartRun(systemInfo string)
	StartStressor(name string, workers int)
	FinishStressor(name string, result *api.StressorResult)
	FinishRunWithInternalError(msg string)
	FinishRunWithoutError()
}
