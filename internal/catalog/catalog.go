// Package catalog defines the release-task directory.
//
// The directory enumerates the fixed set of release tasks (id, name,
// time estimate). It can be compiled from a CUE spec file shipped with
// the planner or fetched from the task-directory backend; both paths
// produce the same validated, NFC-normalized task list.
package catalog

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/Ahmad-Qasm/RM-client/internal/estimate"
)

// Task ids are fixed slots. Ids inside the range without a date rule
// (16, 17) are reserved; the directory may or may not populate them.
const (
	MinTaskID = 1
	MaxTaskID = 36
)

// Task is one entry of the release-task directory.
//
// OriginalEstimate is either a plain number of minutes or a formula
// over the order's engine count (see the estimate package). It is kept
// as the raw string until submission time, when the engine count is
// known.
type Task struct {
	ID               int    `json:"taskid"`
	Name             string `json:"name"`
	OriginalEstimate string `json:"originalEstimate"`
}

// Normalize validates a task list and returns it sorted by id.
//
// Checks: ids inside [MinTaskID, MaxTaskID], unique ids, non-empty
// names, estimate expressions that parse under the restricted grammar.
// Names are normalized to Unicode NFC so catalog, store and backend
// comparisons are byte-stable.
func Normalize(tasks []Task) ([]Task, error) {
	out := make([]Task, len(tasks))
	seen := make(map[int]bool, len(tasks))

	for i, task := range tasks {
		if task.ID < MinTaskID || task.ID > MaxTaskID {
			return nil, fmt.Errorf("task %d: id out of range %d..%d", task.ID, MinTaskID, MaxTaskID)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("task %d: duplicate id", task.ID)
		}
		seen[task.ID] = true

		if task.Name == "" {
			return nil, fmt.Errorf("task %d: name is required", task.ID)
		}
		if err := estimate.Check(task.OriginalEstimate); err != nil {
			return nil, fmt.Errorf("task %d: %w", task.ID, err)
		}

		task.Name = norm.NFC.String(task.Name)
		out[i] = task
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
