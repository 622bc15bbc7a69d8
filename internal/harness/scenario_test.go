package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: basic
description: "anchor A only"
order:
  id: 7
  del_order_a: w2104
today: 2021-01-10
steps:
  - op: set_meeting
    date: 2021-06-07
expect:
  - task: 10
    date: 2021-06-14
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", scenario.Name)
	assert.Equal(t, "w2104", scenario.Order.DelOrderA)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, OpSetMeeting, scenario.Steps[0].Op)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	// "expects" is a typo for "expect" and must be rejected.
	path := writeScenario(t, `
name: typo
description: "x"
order:
  id: 7
today: 2021-01-10
expects:
  - task: 1
    absent: true
`)

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing name", `
description: "x"
order: {id: 7}
today: 2021-01-10
expect: [{task: 1, absent: true}]
`},
		{"missing order id", `
name: x
description: "x"
order: {name: "no id"}
today: 2021-01-10
expect: [{task: 1, absent: true}]
`},
		{"missing today", `
name: x
description: "x"
order: {id: 7}
expect: [{task: 1, absent: true}]
`},
		{"bad today format", `
name: x
description: "x"
order: {id: 7}
today: 10/01/2021
expect: [{task: 1, absent: true}]
`},
		{"empty expect", `
name: x
description: "x"
order: {id: 7}
today: 2021-01-10
`},
		{"unknown op", `
name: x
description: "x"
order: {id: 7}
today: 2021-01-10
steps: [{op: toggle, task: 1}]
expect: [{task: 1, absent: true}]
`},
		{"set_date without date", `
name: x
description: "x"
order: {id: 7}
today: 2021-01-10
steps: [{op: set_date, task: 1}]
expect: [{task: 1, absent: true}]
`},
		{"expect with both date and absent", `
name: x
description: "x"
order: {id: 7}
today: 2021-01-10
expect: [{task: 1, date: 2021-01-01, absent: true}]
`},
		{"expect with neither date nor absent", `
name: x
description: "x"
order: {id: 7}
today: 2021-01-10
expect: [{task: 1}]
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}
