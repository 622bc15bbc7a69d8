package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SortsAndValidates(t *testing.T) {
	tasks, err := Normalize([]Task{
		{ID: 9, Name: "Hold release meeting", OriginalEstimate: "60"},
		{ID: 1, Name: "Freeze calibration data set", OriginalEstimate: "N*15"},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].ID)
	assert.Equal(t, 9, tasks[1].ID)
}

func TestNormalize_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		tasks []Task
	}{
		{"id zero", []Task{{ID: 0, Name: "x", OriginalEstimate: "1"}}},
		{"id above max", []Task{{ID: 37, Name: "x", OriginalEstimate: "1"}}},
		{"duplicate id", []Task{
			{ID: 5, Name: "x", OriginalEstimate: "1"},
			{ID: 5, Name: "y", OriginalEstimate: "1"},
		}},
		{"empty name", []Task{{ID: 5, Name: "", OriginalEstimate: "1"}}},
		{"bad estimate", []Task{{ID: 5, Name: "x", OriginalEstimate: "N*"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.tasks)
			assert.Error(t, err)
		})
	}
}

func TestNormalize_NFCNames(t *testing.T) {
	// "é" as base letter + combining accent must normalize to the
	// precomposed form.
	decomposed := "Review Smée release"
	tasks, err := Normalize([]Task{{ID: 6, Name: decomposed, OriginalEstimate: "60"}})
	require.NoError(t, err)
	assert.Equal(t, "Review Smée release", tasks[0].Name)
}

func TestCompile_MinimalDirectory(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
task: {
	"9": {
		name:              "Hold release meeting"
		original_estimate: "60"
	}
	"10": {
		name:              "Send release meeting minutes"
		original_estimate: "N*5"
	}
}
`)

	tasks, err := Compile(v)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 9, tasks[0].ID)
	assert.Equal(t, "Hold release meeting", tasks[0].Name)
	assert.Equal(t, "N*5", tasks[1].OriginalEstimate)
}

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing directory", `other: {}`},
		{"non-numeric key", `task: "nine": {name: "x", original_estimate: "1"}`},
		{"missing name", `task: "9": {original_estimate: "1"}`},
		{"missing estimate", `task: "9": {name: "x"}`},
		{"bad estimate formula", `task: "9": {name: "x", original_estimate: "N**2"}`},
		{"id out of range", `task: "99": {name: "x", original_estimate: "1"}`},
	}

	ctx := cuecontext.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(ctx.CompileString(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadDir_ShippedDirectory(t *testing.T) {
	// The directory shipped in specs/ must compile: 34 populated slots,
	// 16 and 17 reserved.
	tasks, err := LoadDir(filepath.Join("..", "..", "specs"))
	require.NoError(t, err)
	assert.Len(t, tasks, 34)

	ids := make(map[int]bool, len(tasks))
	for _, task := range tasks {
		ids[task.ID] = true
	}
	assert.False(t, ids[16])
	assert.False(t, ids[17])
	assert.True(t, ids[9])
	assert.True(t, ids[36])
}

func TestLoadDir_NoCueFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))
	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		json.NewEncoder(w).Encode([]Task{
			{ID: 9, Name: "Hold release meeting", OriginalEstimate: "60"},
			{ID: 1, Name: "Freeze calibration data set", OriginalEstimate: "N*15"},
		})
	}))
	defer srv.Close()

	tasks, err := Fetch(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].ID, "fetched directory is sorted")
}

func TestFetch_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}
