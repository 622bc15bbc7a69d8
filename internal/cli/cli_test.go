package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeOrderFile writes an order fixture and returns its path.
func writeOrderFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testOrder = `{
	"id": 7,
	"name": "DC13 main release",
	"delOrderADate": "w2104",
	"engines": ["DC07", "DC09", "DC13"]
}`

// shippedTasks is the CUE task directory shipped with the planner,
// relative to this package.
var shippedTasks = filepath.Join("..", "..", "specs")

// decodeData decodes the Data field of a JSON CLI response into dst.
func decodeData(t *testing.T, output string, dst any) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Equal(t, "ok", resp.Status)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}
