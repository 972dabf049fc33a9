package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressforge/stresser/internal/behave"
	"github.com/stressforge/stresser/internal/environment"
	"github.com/stressforge/stresser/internal/gatherer/termgath"
	"github.com/stressforge/stresser/internal/supervise"
)

func TestSelectGathererDefaultsToTerminal(t *testing.T) {
	g, err := selectGatherer(&environment.EnvConfig{}, "run-1")
	require.NoError(t, err)
	assert.IsType(t, &termgath.TerminalGatherer{}, g)

	g, err = selectGatherer(&environment.EnvConfig{Gatherer: "term"}, "run-1")
	require.NoError(t, err)
	assert.IsType(t, &termgath.TerminalGatherer{}, g)
}

func TestSelectGathererRejectsBadConfig(t *testing.T) {
	_, err := selectGatherer(&environment.EnvConfig{Gatherer: "carrier-pigeon"}, "run-1")
	assert.ErrorContains(t, err, "unknown gatherer")

	_, err = selectGatherer(&environment.EnvConfig{Gatherer: "sqs"}, "run-1")
	assert.ErrorContains(t, err, "SQS_QUEUE_URL is empty")
}

func TestRunScenarioMergesWorkers(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := behave.Scenario{
		Name:          "cpu",
		Stressor:      "cpu",
		Workers:       3,
		Timeout:       100 * time.Millisecond,
		Flags:         supervise.FlagNoChildWrapper,
		ExpectSuccess: true,
	}

	result, err := runScenario(context.Background(), log, sc)
	require.NoError(t, err)

	assert.Equal(t, "cpu", result.Stressor)
	assert.Equal(t, 0, result.ExitCode)
	assert.Positive(t, result.Ops, "merged op counts from all workers")
	assert.Positive(t, result.WallMillis)
	assert.False(t, result.Failed())
}

func TestRunScenarioUnknownStressor(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := behave.Scenario{Name: "ghost", Stressor: "ghost", Workers: 1}

	_, err := runScenario(context.Background(), log, sc)
	assert.ErrorContains(t, err, "unknown stressor")
}
