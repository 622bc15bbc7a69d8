package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// CompileError is a task-directory compilation failure with source
// position, when CUE can provide one.
type CompileError struct {
	Field   string
	Message string
	Pos     string // "file:line:col" or ""
}

func (e *CompileError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir compiles every .cue file in a directory into one task
// directory. Files are compiled together in lexical filename order so
// a directory can split the catalog across files.
func LoadDir(dir string) ([]Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read specs dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no .cue files in %s", dir)
	}

	ctx := cuecontext.New()
	value := ctx.CompileString("{}")
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read spec file: %w", err)
		}
		value = value.Unify(ctx.CompileBytes(data, cue.Filename(file)))
	}
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return Compile(value)
}

// Compile parses a CUE value into the task directory.
//
// The expected shape keys tasks by their decimal id:
//
//	task: "9": {
//	    name:              "Hold release meeting"
//	    original_estimate: "60"
//	}
//
// The result is validated and normalized via Normalize.
func Compile(v cue.Value) ([]Task, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	taskVal := v.LookupPath(cue.ParsePath("task"))
	if !taskVal.Exists() {
		return nil, &CompileError{Field: "task", Message: "task directory is required"}
	}

	iter, err := taskVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tasks []Task
	for iter.Next() {
		label := iter.Label()
		entry := iter.Value()

		id, err := strconv.Atoi(label)
		if err != nil {
			return nil, &CompileError{
				Field:   "task." + label,
				Message: "task key must be a decimal id",
				Pos:     posString(entry),
			}
		}

		nameVal := entry.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("task.%d.name", id),
				Message: "name is required",
				Pos:     posString(entry),
			}
		}
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		estVal := entry.LookupPath(cue.ParsePath("original_estimate"))
		if !estVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("task.%d.original_estimate", id),
				Message: "original_estimate is required",
				Pos:     posString(entry),
			}
		}
		est, err := estVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		tasks = append(tasks, Task{ID: id, Name: name, OriginalEstimate: est})
	}

	normalized, err := Normalize(tasks)
	if err != nil {
		return nil, &CompileError{Field: "task", Message: err.Error()}
	}
	return normalized, nil
}

// posString renders a CUE source position for error messages.
func posString(v cue.Value) string {
	pos := v.Pos()
	if !pos.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column())
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		pos := positions[0]
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column()),
		}
	}

	return err
}
