package harness

import (
	"fmt"
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/catalog"
	"github.com/Ahmad-Qasm/RM-client/internal/order"
	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

// Run executes a scenario against the given task directory.
//
// Execution flow:
//  1. Build the order and a fresh session with a pinned clock
//  2. Initialize the session (derives anchor-based dates)
//  3. Apply the scenario steps in order
//  4. Evaluate every expectation against the final schedule
//
// Step errors abort the run; expectation mismatches are collected into
// the result instead.
func Run(scenario *Scenario, directory []catalog.Task) (*Result, error) {
	o := &order.Order{
		ID:        scenario.Order.ID,
		Name:      scenario.Order.Name,
		DelOrderA: scenario.Order.DelOrderA,
		DelOrderB: scenario.Order.DelOrderB,
		DelOrderC: scenario.Order.DelOrderC,
		DelOrderD: scenario.Order.DelOrderD,
		DelOrderE: scenario.Order.DelOrderE,
		DelOrderF: scenario.Order.DelOrderF,
		Engines:   scenario.Order.Engines,
	}

	today, err := time.ParseInLocation(time.DateOnly, scenario.Today, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse today: %w", err)
	}

	sess := session.New(o, directory,
		session.WithNow(func() time.Time { return today }),
		session.WithTokenGenerator(session.NewFixedGenerator(scenario.Name+"-token")),
	)
	if err := sess.Init(); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := applyStep(sess, step); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
	}

	result := NewResult()
	result.State = sess.State().String()
	if m := sess.Meeting(); m != nil {
		result.Meeting = m.Format(time.DateOnly)
	}
	for _, task := range sess.Tasks() {
		entry := ScheduleEntry{
			Task:    task.ID,
			Name:    task.Name,
			Checked: task.Checked,
		}
		if task.Date != nil {
			entry.Date = task.Date.Format(time.DateOnly)
		}
		result.Schedule = append(result.Schedule, entry)
	}

	evaluateExpectations(sess, scenario.Expect, result)
	return result, nil
}

func applyStep(sess *session.Session, step Step) error {
	switch step.Op {
	case OpSetMeeting:
		d, err := time.ParseInLocation(time.DateOnly, step.Date, time.UTC)
		if err != nil {
			return err
		}
		return sess.SetDate(9, d)
	case OpSetDate:
		d, err := time.ParseInLocation(time.DateOnly, step.Date, time.UTC)
		if err != nil {
			return err
		}
		return sess.SetDate(step.Task, d)
	case OpClearDate:
		return sess.ClearDate(step.Task)
	case OpCheck:
		return sess.SetChecked(step.Task, true)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// evaluateExpectations checks each expectation against the session's
// final schedule and records mismatches on the result.
func evaluateExpectations(sess *session.Session, expects []Expectation, result *Result) {
	for i, exp := range expects {
		task, ok := sess.Task(exp.Task)
		if !ok {
			result.AddError(fmt.Sprintf("expect[%d]: task %d not in directory", i, exp.Task))
			continue
		}

		switch {
		case exp.Absent:
			if task.Date != nil {
				result.AddError(fmt.Sprintf(
					"expect[%d]: task %d should have no date, got %s",
					i, exp.Task, task.Date.Format(time.DateOnly)))
			}
		case task.Date == nil:
			result.AddError(fmt.Sprintf(
				"expect[%d]: task %d should be %s, got no date",
				i, exp.Task, exp.Date))
		case task.Date.Format(time.DateOnly) != exp.Date:
			result.AddError(fmt.Sprintf(
				"expect[%d]: task %d should be %s, got %s",
				i, exp.Task, exp.Date, task.Date.Format(time.DateOnly)))
		}
	}
}
