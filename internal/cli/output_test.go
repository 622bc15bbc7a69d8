package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"tasks": 34}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_SuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("34 tasks"))
	assert.Equal(t, "34 tasks\n", buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("ORDER_LOAD", "no such file", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ORDER_LOAD", resp.Error.Code)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error("ORDER_LOAD", "no such file", nil))
	assert.Contains(t, buf.String(), "Error [ORDER_LOAD]: no such file")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errBuf, Verbose: true}

	f.VerboseLog("loaded %d tasks", 34)
	assert.Empty(t, out.String(), "verbose output must not corrupt JSON output")
	assert.Equal(t, "loaded 34 tasks\n", errBuf.String())

	f.Verbose = false
	errBuf.Reset()
	f.VerboseLog("suppressed")
	assert.Empty(t, errBuf.String())
}

func TestExitError(t *testing.T) {
	base := fmt.Errorf("disk full")
	err := WrapExitError(ExitCommandError, "failed to open submission log", base)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, errors.Is(err, base))

	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain error")))
}
