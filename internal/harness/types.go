package harness

// ScheduleEntry is one task's final state after a scenario ran.
// Date is the empty string when the task carries no due date.
type ScheduleEntry struct {
	Task    int    `json:"task"`
	Name    string `json:"name"`
	Checked bool   `json:"checked,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation matched.
	Pass bool `json:"pass"`

	// State is the session's lifecycle state after the steps ran.
	State string `json:"state"`

	// Meeting is the release-meeting anchor, empty when unset.
	Meeting string `json:"meeting,omitempty"`

	// Schedule is the full task list in directory order.
	Schedule []ScheduleEntry `json:"schedule"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Schedule: []ScheduleEntry{},
		Errors:   []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
