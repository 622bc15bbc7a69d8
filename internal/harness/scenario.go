package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: an order, a pinned clock,
// a sequence of planning steps and the expected schedule.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Order describes the calibration order under plan.
	Order OrderSpec `yaml:"order"`

	// Today pins the wall clock (YYYY-MM-DD). Required so that the
	// "dated today" rule stays deterministic.
	Today string `yaml:"today"`

	// Steps are applied in order after session initialization.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect lists schedule expectations checked after the steps ran.
	Expect []Expectation `yaml:"expect"`
}

// OrderSpec is the scenario's order definition. Delivery anchors are
// production-calendar week strings; empty means absent.
type OrderSpec struct {
	ID        int64    `yaml:"id"`
	Name      string   `yaml:"name,omitempty"`
	DelOrderA string   `yaml:"del_order_a,omitempty"`
	DelOrderB string   `yaml:"del_order_b,omitempty"`
	DelOrderC string   `yaml:"del_order_c,omitempty"`
	DelOrderD string   `yaml:"del_order_d,omitempty"`
	DelOrderE string   `yaml:"del_order_e,omitempty"`
	DelOrderF string   `yaml:"del_order_f,omitempty"`
	Engines   []string `yaml:"engines,omitempty"`
}

// Step is one planning action.
type Step struct {
	// Op is the operation: set_meeting, set_date, clear_date or check.
	Op string `yaml:"op"`

	// Task is the target task id. Unused by set_meeting, which always
	// targets the release-meeting task.
	Task int `yaml:"task,omitempty"`

	// Date is the operand for set_meeting and set_date (YYYY-MM-DD).
	Date string `yaml:"date,omitempty"`
}

// Step operation constants.
const (
	OpSetMeeting = "set_meeting"
	OpSetDate    = "set_date"
	OpClearDate  = "clear_date"
	OpCheck      = "check"
)

// Expectation is one schedule assertion: the task either carries the
// given date or carries no date at all.
type Expectation struct {
	Task   int    `yaml:"task"`
	Date   string `yaml:"date,omitempty"`
	Absent bool   `yaml:"absent,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Order.ID == 0 {
		return fmt.Errorf("order.id is required")
	}
	if s.Today == "" {
		return fmt.Errorf("today is required")
	}
	if _, err := time.ParseInLocation(time.DateOnly, s.Today, time.UTC); err != nil {
		return fmt.Errorf("today: %w", err)
	}
	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpSetMeeting:
			if step.Date == "" {
				return fmt.Errorf("steps[%d]: date is required for set_meeting", i)
			}
		case OpSetDate:
			if step.Task == 0 {
				return fmt.Errorf("steps[%d]: task is required for set_date", i)
			}
			if step.Date == "" {
				return fmt.Errorf("steps[%d]: date is required for set_date", i)
			}
		case OpClearDate, OpCheck:
			if step.Task == 0 {
				return fmt.Errorf("steps[%d]: task is required for %s", i, step.Op)
			}
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Date != "" {
			if _, err := time.ParseInLocation(time.DateOnly, step.Date, time.UTC); err != nil {
				return fmt.Errorf("steps[%d]: date: %w", i, err)
			}
		}
	}

	for i, exp := range s.Expect {
		if exp.Task == 0 {
			return fmt.Errorf("expect[%d]: task is required", i)
		}
		if exp.Absent == (exp.Date != "") {
			return fmt.Errorf("expect[%d]: exactly one of date or absent is required", i)
		}
		if exp.Date != "" {
			if _, err := time.ParseInLocation(time.DateOnly, exp.Date, time.UTC); err != nil {
				return fmt.Errorf("expect[%d]: date: %w", i, err)
			}
		}
	}

	return nil
}
