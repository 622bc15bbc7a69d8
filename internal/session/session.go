// Package session orchestrates one planning session for a calibration
// order: the task list, the anchor dates, the release-meeting anchor
// and the submission of the resulting schedule.
//
// The session is the single mutator of its task list and anchors;
// nothing else touches them. All recomputation happens synchronously
// inside the mutating call, so there is no locking and no background
// work. State lives in memory for the lifetime of the session and is
// discarded on cancel or submit.
//
// Lifecycle:
//
//	Unopened -> Initialized -> MeetingSet <-> MeetingSet -> Submitted
//	                                                      | Cancelled
//
// Initialized computes every anchor-derived due date. Setting task 9's
// date records the release-meeting anchor and rederives exactly the
// meeting-dependent task set; this is re-triggerable arbitrarily often.
// Submitted and Cancelled are terminal.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/anchor"
	"github.com/Ahmad-Qasm/RM-client/internal/catalog"
	"github.com/Ahmad-Qasm/RM-client/internal/estimate"
	"github.com/Ahmad-Qasm/RM-client/internal/order"
	"github.com/Ahmad-Qasm/RM-client/internal/rules"
)

// State is the planning-session lifecycle state.
type State int

// Session states in lifecycle order.
const (
	StateUnopened State = iota
	StateInitialized
	StateMeetingSet
	StateSubmitted
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateInitialized:
		return "initialized"
	case StateMeetingSet:
		return "meeting-set"
	case StateSubmitted:
		return "submitted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is a directory task with the per-session attributes layered on.
// Date is nil until a rule derives it or the user picks one.
type Task struct {
	catalog.Task
	Checked bool
	Date    *time.Time
}

// TaskDate is the persistence request produced for one checked task at
// submission time.
type TaskDate struct {
	SubmissionToken string
	CatalogID       int
	Name            string
	Due             time.Time
	Minutes         int64
	OrderID         int64
}

// Saver persists one task date. Implemented by the backend client and
// the local store.
type Saver interface {
	SaveTaskDate(ctx context.Context, td TaskDate) error
}

// Issue is one validation finding that blocks submission.
type Issue struct {
	TaskID int
	Name   string
	Code   ErrorCode
}

// TaskFailure records a per-task submission failure. Failures do not
// roll back earlier saves; partial success is visible to the caller.
type TaskFailure struct {
	TaskID int
	Name   string
	Err    error
}

// Result summarizes one submission.
type Result struct {
	SubmissionToken string
	Saved           []TaskDate
	Failed          []TaskFailure
}

// Option configures a Session.
type Option func(*Session)

// WithNow injects the wall clock. The "start calibration" task is dated
// with this clock; tests pin it for determinism.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTokenGenerator injects the submission-token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(s *Session) { s.tokens = g }
}

// Session owns the in-memory planning state for one order.
// Not safe for concurrent use: there is exactly one mutator by design.
type Session struct {
	state   State
	order   *order.Order
	anchors *anchor.Set
	meeting *time.Time
	tasks   []*Task
	byID    map[int]*Task
	now     func() time.Time
	tokens  TokenGenerator
}

// New creates an unopened session over the order and task directory.
// Tasks start unchecked and dateless; call Init to derive dates.
func New(o *order.Order, directory []catalog.Task, opts ...Option) *Session {
	s := &Session{
		state:  StateUnopened,
		order:  o,
		now:    time.Now,
		tokens: UUIDv7Generator{},
		byID:   make(map[int]*Task, len(directory)),
	}
	for _, entry := range directory {
		task := &Task{Task: entry}
		s.tasks = append(s.tasks, task)
		s.byID[task.ID] = task
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Meeting returns the release-meeting anchor, or nil when not yet set.
func (s *Session) Meeting() *time.Time {
	return s.meeting
}

// Tasks returns a snapshot of the task list in directory order.
func (s *Session) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, task := range s.tasks {
		out[i] = *task
	}
	return out
}

// Task returns a snapshot of one task.
func (s *Session) Task(id int) (Task, bool) {
	task, ok := s.byID[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Init loads the delivery anchors from the order and derives every
// anchor-based due date. Meeting-dependent tasks stay dateless until
// the meeting anchor is set.
func (s *Session) Init() error {
	if s.state != StateUnopened {
		return &PlanError{Code: ErrCodeSessionClosed, Message: "session already initialized"}
	}

	s.anchors = anchor.Load(s.order)
	today := s.now()

	for _, task := range s.tasks {
		if task.ID == rules.MeetingAnchorTask || rules.MeetingDependent(task.ID) {
			continue
		}
		task.Date = rules.Compute(task.ID, s.anchors, nil, nil, today)
	}

	s.state = StateInitialized
	slog.Debug("session initialized",
		"order", s.order.ID,
		"tasks", len(s.tasks),
	)
	return nil
}

// SetChecked marks a task as selected for this release. Checked state
// never affects date derivation.
func (s *Session) SetChecked(id int, checked bool) error {
	task, err := s.mutableTask(id)
	if err != nil {
		return err
	}
	task.Checked = checked
	return nil
}

// SetDate records a user-picked due date for a task.
//
// For task 9 ("Hold release meeting") the date also becomes the
// release-meeting anchor and triggers rederivation of the dependent
// task set. Dependent tasks that already carry a concrete date keep it
// (override precedence); dateless ones are derived from the new anchor.
// The trigger is idempotent and may fire arbitrarily many times.
func (s *Session) SetDate(id int, d time.Time) error {
	task, err := s.mutableTask(id)
	if err != nil {
		return err
	}

	day := civil(d)
	task.Date = &day

	if id == rules.MeetingAnchorTask {
		s.meeting = &day
		s.state = StateMeetingSet
		s.refreshDependent()
		slog.Debug("release meeting anchor set", "order", s.order.ID, "meeting", day.Format(time.DateOnly))
	}
	return nil
}

// ClearDate removes a task's due date. A cleared meeting-dependent task
// is rederived on the next meeting-anchor change. Clearing task 9 also
// clears the meeting anchor.
func (s *Session) ClearDate(id int) error {
	task, err := s.mutableTask(id)
	if err != nil {
		return err
	}
	task.Date = nil
	if id == rules.MeetingAnchorTask {
		s.meeting = nil
	}
	return nil
}

// refreshDependent rederives the fixed meeting-dependent task set.
// Each task's current date is passed as the existing date, so dates
// already fixed (by the user or an earlier derivation) survive.
func (s *Session) refreshDependent() {
	today := s.now()
	for _, id := range rules.DependentTasks() {
		task, ok := s.byID[id]
		if !ok {
			continue
		}
		task.Date = rules.Compute(id, s.anchors, task.Date, s.meeting, today)
	}
}

// Validate reports every checked task that has no due date. A non-empty
// result blocks submission.
func (s *Session) Validate() []Issue {
	var issues []Issue
	for _, task := range s.tasks {
		if task.Checked && task.Date == nil {
			issues = append(issues, Issue{
				TaskID: task.ID,
				Name:   task.Name,
				Code:   ErrCodeMissingDate,
			})
		}
	}
	return issues
}

// Cancel discards the session. Terminal.
func (s *Session) Cancel() error {
	if s.state == StateSubmitted || s.state == StateCancelled {
		return &PlanError{Code: ErrCodeSessionClosed, Message: "session already closed"}
	}
	s.state = StateCancelled
	return nil
}

// Submit persists every checked task's date via the saver, sequentially
// and in directory order.
//
// Submission is blocked up front when any checked task is dateless: no
// saves happen at all. After that, failures are per task - an estimate
// formula that does not evaluate or a saver rejection is recorded in
// the result and the remaining tasks still proceed. Earlier saves are
// never rolled back. The session ends Submitted either way.
func (s *Session) Submit(ctx context.Context, saver Saver) (*Result, error) {
	switch s.state {
	case StateUnopened:
		return nil, &PlanError{Code: ErrCodeNotInitialized, Message: "session not initialized"}
	case StateSubmitted, StateCancelled:
		return nil, &PlanError{Code: ErrCodeSessionClosed, Message: "session already closed"}
	}

	if issues := s.Validate(); len(issues) > 0 {
		return nil, &PlanError{
			Code:    ErrCodeMissingDate,
			TaskID:  issues[0].TaskID,
			Message: "each checked task must have a date before the calibration can be started",
		}
	}

	result := &Result{SubmissionToken: s.tokens.Generate()}
	engines := s.order.EngineCount()

	for _, task := range s.tasks {
		if !task.Checked {
			continue
		}

		minutes, err := estimate.Minutes(task.OriginalEstimate, engines)
		if err != nil {
			slog.Warn("estimate evaluation failed",
				"order", s.order.ID,
				"task", task.ID,
				"estimate", task.OriginalEstimate,
				"error", err,
			)
			result.Failed = append(result.Failed, TaskFailure{
				TaskID: task.ID,
				Name:   task.Name,
				Err:    &PlanError{Code: ErrCodeEstimateInvalid, TaskID: task.ID, Message: "could not calculate estimated time", Err: err},
			})
			continue
		}

		td := TaskDate{
			SubmissionToken: result.SubmissionToken,
			CatalogID:       task.ID,
			Name:            task.Name,
			Due:             *task.Date,
			Minutes:         minutes,
			OrderID:         s.order.ID,
		}

		if err := saver.SaveTaskDate(ctx, td); err != nil {
			slog.Error("task date save failed",
				"order", s.order.ID,
				"task", task.ID,
				"error", err,
			)
			result.Failed = append(result.Failed, TaskFailure{
				TaskID: task.ID,
				Name:   task.Name,
				Err:    &PlanError{Code: ErrCodeSaveFailed, TaskID: task.ID, Message: "failed to save task date", Err: err},
			})
			continue
		}

		result.Saved = append(result.Saved, td)
	}

	s.state = StateSubmitted
	slog.Info("session submitted",
		"order", s.order.ID,
		"token", result.SubmissionToken,
		"saved", len(result.Saved),
		"failed", len(result.Failed),
	)
	return result, nil
}

// mutableTask resolves a task id for mutation, enforcing lifecycle and
// existence checks shared by all mutators.
func (s *Session) mutableTask(id int) (*Task, error) {
	switch s.state {
	case StateUnopened:
		return nil, &PlanError{Code: ErrCodeNotInitialized, Message: "session not initialized"}
	case StateSubmitted, StateCancelled:
		return nil, &PlanError{Code: ErrCodeSessionClosed, Message: "session already closed"}
	}
	task, ok := s.byID[id]
	if !ok {
		return nil, &PlanError{Code: ErrCodeUnknownTask, TaskID: id, Message: "task not in directory"}
	}
	return task, nil
}

// civil truncates a timestamp to its calendar date at midnight UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
