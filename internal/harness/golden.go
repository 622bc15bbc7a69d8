package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/Ahmad-Qasm/RM-client/internal/catalog"
)

// ScheduleSnapshot captures the full schedule a scenario produced.
// Serialized with stable field order for deterministic comparison.
type ScheduleSnapshot struct {
	ScenarioName string          `json:"scenario_name"`
	State        string          `json:"state"`
	Meeting      string          `json:"meeting,omitempty"`
	Schedule     []ScheduleEntry `json:"schedule"`
}

// RunWithGolden executes a scenario and compares the resulting schedule
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails or any expectation does
// not match. Golden mismatches fail the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, directory []catalog.Task) error {
	t.Helper()

	result, err := Run(scenario, directory)
	if err != nil {
		return err
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
	}

	snapshot := ScheduleSnapshot{
		ScenarioName: scenario.Name,
		State:        result.State,
		Meeting:      result.Meeting,
		Schedule:     result.Schedule,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
