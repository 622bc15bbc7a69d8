package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmad-Qasm/RM-client/internal/store"
)

func TestSubmit_ToLocalLog(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)
	dbPath := filepath.Join(t.TempDir(), "log.db")

	out, err := execute(t, "--format", "json", "submit",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--check", "3",
		"--check", "4",
		"--db", dbPath,
	)
	require.NoError(t, err)

	var result SubmitResult
	decodeData(t, out, &result)
	assert.NotEmpty(t, result.SubmissionToken)
	require.Len(t, result.Saved, 2)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 3, result.Saved[0].Task)
	assert.Equal(t, 4, result.Saved[1].Task)

	// The log holds exactly the saved rows.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	records, err := st.ListSubmission(context.Background(), result.SubmissionToken)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2021-01-19", records[1].Due.Format("2006-01-02"))
}

func TestSubmit_ToBackend(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	var (
		mu    sync.Mutex
		tasks []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tasks" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "/new-taskdate", r.URL.Path)
		var body struct {
			Task string `json:"task"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		tasks = append(tasks, body.Task)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	_, err := execute(t, "submit",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--check", "4",
		"--backend", srv.URL,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Create release branch and baseline"}, tasks)
}

func TestSubmit_BlockedOnMissingDate(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)
	dbPath := filepath.Join(t.TempDir(), "log.db")

	// Task 2 derives from DelOrder F, which the order does not carry.
	_, err := execute(t, "submit",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--check", "2",
		"--db", dbPath,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// Nothing was written.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	records, err := st.ListTaskDates(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmit_PartialBackendFailure(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Task string `json:"task"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Task == "Start calibration process" {
			http.Error(w, "rejected", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	out, err := execute(t, "--format", "json", "submit",
		"--order", orderFile,
		"--tasks", shippedTasks,
		"--today", "2021-01-10",
		"--check", "3",
		"--check", "4",
		"--backend", srv.URL,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result SubmitResult
	decodeData(t, out, &result)
	require.Len(t, result.Saved, 1)
	assert.Equal(t, 4, result.Saved[0].Task)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 3, result.Failed[0].Task)
}

func TestSubmit_RequiresTarget(t *testing.T) {
	orderFile := writeOrderFile(t, testOrder)

	_, err := execute(t, "submit", "--order", orderFile, "--tasks", shippedTasks)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db or --backend")
}
