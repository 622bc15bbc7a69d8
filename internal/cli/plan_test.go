package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleDate(t *testing.T, result *PlanResult, taskID int) string {
	t.Helper()
	for _, row := range result.Schedule {
		if row.Task == taskID {
			return row.Date
		}
	}
	t.Fatalf("task %d not in schedule", taskID)
	return ""
}

func TestPlan_AnchorDerivedSchedule(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	out, err := execute(t, "--format", "json", "plan",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
	)
	require.NoError(t, err)

	var result PlanResult
	decodeData(t, out, &result)
	assert.Equal(t, int64(7), result.Order)
	assert.Equal(t, "initialized", result.State)
	assert.Empty(t, result.Meeting)

	assert.Equal(t, "2021-01-29", scheduleDate(t, &result, 1))
	assert.Equal(t, "2021-01-19", scheduleDate(t, &result, 4))
	assert.Equal(t, "2021-01-10", scheduleDate(t, &result, 3))
	assert.Equal(t, "2021-01-28", scheduleDate(t, &result, 20))
	assert.Empty(t, scheduleDate(t, &result, 10), "meeting-dependent task stays dateless")
}

func TestPlan_MeetingDerivesDependents(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	out, err := execute(t, "--format", "json", "plan",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--meeting", "2021-06-07",
	)
	require.NoError(t, err)

	var result PlanResult
	decodeData(t, out, &result)
	assert.Equal(t, "meeting-set", result.State)
	assert.Equal(t, "2021-06-07", result.Meeting)
	assert.Equal(t, "2021-06-14", scheduleDate(t, &result, 10))
	assert.Equal(t, "2021-05-21", scheduleDate(t, &result, 12))
}

func TestPlan_DateOverrideWinsOverMeeting(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	out, err := execute(t, "--format", "json", "plan",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--date", "10=2021-01-01",
		"--meeting", "2021-06-07",
	)
	require.NoError(t, err)

	var result PlanResult
	decodeData(t, out, &result)
	assert.Equal(t, "2021-01-01", scheduleDate(t, &result, 10))
	assert.Equal(t, "2021-06-14", scheduleDate(t, &result, 14), "other dependents still derive")
}

func TestPlan_TextOutput(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	out, err := execute(t, "plan",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--meeting", "2021-06-07",
		"--check", "4",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Release meeting: 2021-06-07")
	assert.Contains(t, out, "Create release branch and baseline")
	assert.Contains(t, out, "2021-01-19")
}

func TestPlan_BadFlags(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	cases := []struct {
		name string
		args []string
	}{
		{"bad meeting", []string{"--meeting", "07/06/2021"}},
		{"bad today", []string{"--today", "yesterday"}},
		{"bad date format", []string{"--date", "10:2021-01-01"}},
		{"bad date id", []string{"--date", "ten=2021-01-01"}},
		{"unknown task in date", []string{"--date", "99=2021-01-01"}},
		{"unknown task in check", []string{"--check", "99"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"plan", "--order", orderFile, "--tasks", shippedTasks}, tc.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestPlan_MissingOrderFile(t *testing.T) {
	_, err := execute(t, "plan", "--order", "does-not-exist.json", "--tasks", shippedTasks)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
