package behave

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/stressforge/stresser/internal/supervise"
)

// SpecScenario is a single scenario entry in a plan file
type SpecScenario struct {
	Name     string   `toml:"name"`
	Stressor string   `toml:"stressor"`
	Args     []string `toml:"args"`
	Workers  int      `toml:"workers"`

	TimeoutMs int `toml:"timeout_ms"`

	OomAcceptable  bool `toml:"oom_acceptable"`
	DropCaps       bool `toml:"drop_caps"`
	NoChildWrapper bool `toml:"no_child_wrapper"`
	Quiet          bool `toml:"quiet"`

	// Expect is "success" (default) or "failure"
	Expect string `toml:"expect"`
}

type specRoot struct {
	Scenarios []SpecScenario `toml:"scenarios"`
}

// Scenario is a runnable scenario converted from TOML
type Scenario struct {
	Name          string
	Stressor      string
	Args          []string
	Workers       int
	Timeout       time.Duration
	Flags         supervise.Flags
	ExpectSuccess bool
}

// Plan is a parsed plan file with a fresh run identity
type Plan struct {
	RunUuid   string
	Scenarios []Scenario
}

// Parse reads a plan TOML file and converts it to runnable scenarios
func Parse(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if len(root.Scenarios) == 0 {
		return nil, fmt.Errorf("plan file has no scenarios")
	}

	scenarios := make([]Scenario, 0, len(root.Scenarios))
	for i, spec := range root.Scenarios {
		if spec.Stressor == "" {
			return nil, fmt.Errorf("scenario %d is missing a stressor", i)
		}

		name := spec.Name
		if name == "" {
			name = spec.Stressor
		}

		// Apply defaults when not provided
		workers := spec.Workers
		if workers <= 0 {
			workers = 1
		}
		timeoutMs := spec.TimeoutMs
		if timeoutMs <= 0 {
			timeoutMs = 10_000
		}

		var flags supervise.Flags
		if spec.OomAcceptable {
			flags |= supervise.FlagOOMAcceptable
		}
		if spec.DropCaps {
			flags |= supervise.FlagDropCaps
		}
		if spec.NoChildWrapper {
			flags |= supervise.FlagNoChildWrapper
		}
		if spec.Quiet {
			flags |= supervise.FlagQuiet
		}

		expectSuccess := true
		switch spec.Expect {
		case "", "success":
		case "failure":
			expectSuccess = false
		default:
			return nil, fmt.Errorf("scenario %q has unknown expect value %q", name, spec.Expect)
		}

		scenarios = append(scenarios, Scenario{
			Name:          name,
			Stressor:      spec.Stressor,
			Args:          spec.Args,
			Workers:       workers,
			Timeout:       time.Duration(timeoutMs) * time.Millisecond,
			Flags:         flags,
			ExpectSuccess: expectSuccess,
		})
	}

	return &Plan{
		RunUuid:   uuid.NewString(),
		Scenarios: scenarios,
	}, nil
}
