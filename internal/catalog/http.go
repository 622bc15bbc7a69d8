package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Fetch retrieves the task directory from the backend collaborator.
//
// The backend exposes the directory as GET {base}/tasks returning a
// JSON array of {taskid, name, originalEstimate}. The result goes
// through the same Normalize pass as CUE-compiled directories.
//
// Pass nil for client to use http.DefaultClient; cancellation and
// timeouts come from ctx.
func Fetch(ctx context.Context, client *http.Client, base string) ([]Task, error) {
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.JoinPath(base, "tasks")
	if err != nil {
		return nil, fmt.Errorf("task directory url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("task directory request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch task directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch task directory: backend returned %s", resp.Status)
	}

	var tasks []Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode task directory: %w", err)
	}

	return Normalize(tasks)
}
