package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

func testTaskDate() session.TaskDate {
	return session.TaskDate{
		SubmissionToken: "token-1",
		CatalogID:       1,
		Name:            "Freeze calibration data set",
		Due:             time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC),
		Minutes:         45,
		OrderID:         7,
	}
}

func TestSaveTaskDate(t *testing.T) {
	var got taskDateRequest
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/new-taskdate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotToken = r.Header.Get(submissionTokenHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	require.NoError(t, c.SaveTaskDate(context.Background(), testTaskDate()))

	// The body's id is the task's catalog id; the submission token
	// travels only in the correlation header.
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "token-1", gotToken)
	assert.Equal(t, "Freeze calibration data set", got.Task)
	assert.Equal(t, "Fri, 29 Jan 2021 00:00:00 GMT", got.Date)
	assert.Equal(t, int64(45), got.TimeEstimate)
	assert.Equal(t, int64(7), got.OrderID)
}

func TestSaveTaskDate_IDIsCatalogID(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	td := testTaskDate()
	td.CatalogID = 23

	c := New(srv.URL, srv.Client())
	require.NoError(t, c.SaveTaskDate(context.Background(), td))

	// id must be the numeric catalog id, never the submission token.
	assert.Equal(t, float64(23), raw["id"])
}

func TestSaveTaskDate_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate task date", http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	err := c.SaveTaskDate(context.Background(), testTaskDate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "duplicate task date")
}

func TestSaveTaskDate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, srv.Client())
	err := c.SaveTaskDate(ctx, testTaskDate())
	assert.Error(t, err)
}

func TestNew_NilHTTPClient(t *testing.T) {
	c := New("http://localhost:0", nil)
	assert.Same(t, http.DefaultClient, c.http)
}
