// Package rules implements the release-task due-date derivation engine.
//
// Compute is a pure function from (task id, anchor set, existing date,
// meeting date, today) to a proposed due date. All inputs are explicit
// parameters - there is no module state - so recomputation is idempotent
// and every rule is unit-testable in isolation.
//
// Rules come in three shapes:
//
//   - fixed offsets from a delivery-order anchor or from the latest
//     present anchor among A..E
//   - weekday-conditional offsets, where the weekday of the already
//     offset date (never the raw anchor) selects the final adjustment
//   - offsets from the user-chosen release-meeting date
//
// Meeting-derived rules additionally honor user overrides: when the
// task already carries a concrete date, Compute returns it unchanged so
// repeated meeting edits never clobber a manually picked date. Clearing
// the date re-arms derivation on the next trigger.
//
// All offsets are calendar days. Business-day skipping, where wanted,
// is encoded directly in the weekday-conditional rules.
package rules

import (
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/anchor"
)

// MeetingAnchorTask is the id of "Hold release meeting". It has no rule:
// its date is supplied by the user and becomes the meeting anchor that
// the meeting-dependent tasks derive from.
const MeetingAnchorTask = 9

// meetingDependent is the fixed set of tasks rederived whenever the
// release-meeting anchor changes.
var meetingDependent = map[int]bool{
	10: true, 11: true, 12: true, 13: true,
	14: true, 15: true, 35: true, 36: true,
}

// MeetingDependent reports whether the task's due date derives from the
// release-meeting anchor.
func MeetingDependent(id int) bool {
	return meetingDependent[id]
}

// DependentTasks returns the meeting-dependent task ids in ascending
// order. The recompute pass iterates exactly this set.
func DependentTasks() []int {
	return []int{10, 11, 12, 13, 14, 15, 35, 36}
}

// Compute derives the due date for one task.
//
// Returns nil when no rule matches the id (unrouted slots such as 16
// and 17) or when a required anchor is absent. Missing anchors never
// produce an error: "no date yet" is a valid planning state and only
// blocks submission for checked tasks.
//
// The existing date takes precedence for meeting-dependent tasks only;
// anchor-derived tasks are always recomputed from the anchors.
func Compute(id int, anchors *anchor.Set, existing, meeting *time.Time, today time.Time) *time.Time {
	switch id {
	case 1:
		// Latest delivery among A..E.
		return anchors.Latest()

	case 2:
		// Same day as DelOrder F.
		return anchors.Date(anchor.DelOrderF)

	case 3:
		// The day the calibration process is started.
		return datePtr(civil(today))

	case 4, 8:
		return latestMinusTen(anchors)

	case 5, 7:
		// Latest(A..E) - 10 days, nudged off the weekend: a Friday base
		// moves to Monday (+3), anything else to the next day (+1).
		// Rule 7 is declared identically in the task directory.
		return structureBuildDate(anchors)

	case 6:
		// Follows the rule-5 date. Thursday/Friday results jump the
		// weekend (+4), others get two working days (+2).
		base := structureBuildDate(anchors)
		if base == nil {
			return nil
		}
		switch base.Weekday() {
		case time.Thursday, time.Friday:
			return datePtr(base.AddDate(0, 0, 4))
		default:
			return datePtr(base.AddDate(0, 0, 2))
		}

	case MeetingAnchorTask:
		// User-supplied; never derived.
		return nil

	case 10, 14:
		return meetingOffset(existing, meeting, 7)

	case 11, 35, 36:
		return meetingOffset(existing, meeting, -14)

	case 12:
		// Meeting - 14 days, then stepped further back depending on the
		// weekday of that base date: Monday -3, Tuesday -4, else -2.
		if existing != nil {
			return existing
		}
		if meeting == nil {
			return nil
		}
		base := civil(*meeting).AddDate(0, 0, -14)
		switch base.Weekday() {
		case time.Monday:
			return datePtr(base.AddDate(0, 0, -3))
		case time.Tuesday:
			return datePtr(base.AddDate(0, 0, -4))
		default:
			return datePtr(base.AddDate(0, 0, -2))
		}

	case 13:
		return meetingOffset(existing, meeting, 14)

	case 15:
		return meetingOffset(existing, meeting, 35)

	case 18:
		return anchorOffset(anchors, anchor.DelOrderE, -10)
	case 19:
		return anchorOffset(anchors, anchor.DelOrderF, -10)
	case 20:
		return anchorOffset(anchors, anchor.DelOrderA, -1)
	case 21:
		return anchorOffset(anchors, anchor.DelOrderB, -1)
	case 22:
		return anchorOffset(anchors, anchor.DelOrderC, -1)
	case 23:
		return anchorOffset(anchors, anchor.DelOrderD, -1)

	case 24, 26:
		return anchorOffset(anchors, anchor.DelOrderE, -8)

	case 25, 27:
		// "DelOrder E - 1 day" per the task directory. The predecessor
		// implementation let case 25 fall through into the rule-26 body;
		// the label comment wins here. See rules_test.go.
		return anchorOffset(anchors, anchor.DelOrderE, -1)

	case 28, 29, 30, 31:
		return anchors.Date(anchor.DelOrderE)

	case 32:
		return anchorOffset(anchors, anchor.DelOrderF, -8)
	case 33:
		return anchorOffset(anchors, anchor.DelOrderF, -1)
	case 34:
		return anchors.Date(anchor.DelOrderF)

	default:
		// Unrouted task slot: no rule, no date.
		return nil
	}
}

// latestMinusTen returns Latest(A..E) - 10 days, or nil.
func latestMinusTen(anchors *anchor.Set) *time.Time {
	latest := anchors.Latest()
	if latest == nil {
		return nil
	}
	return datePtr(latest.AddDate(0, 0, -10))
}

// structureBuildDate implements the shared rule-5/7 base: Latest(A..E)
// minus 10 days, +3 when that lands on a Friday, +1 otherwise.
func structureBuildDate(anchors *anchor.Set) *time.Time {
	base := latestMinusTen(anchors)
	if base == nil {
		return nil
	}
	if base.Weekday() == time.Friday {
		return datePtr(base.AddDate(0, 0, 3))
	}
	return datePtr(base.AddDate(0, 0, 1))
}

// anchorOffset returns the anchor date plus the given day offset, or nil
// when the anchor is absent.
func anchorOffset(anchors *anchor.Set, l anchor.Letter, days int) *time.Time {
	d := anchors.Date(l)
	if d == nil {
		return nil
	}
	return datePtr(d.AddDate(0, 0, days))
}

// meetingOffset applies the override-precedence contract shared by the
// simple meeting-derived rules: a concrete existing date wins, an absent
// meeting anchor yields nil, otherwise meeting plus the offset.
func meetingOffset(existing, meeting *time.Time, days int) *time.Time {
	if existing != nil {
		return existing
	}
	if meeting == nil {
		return nil
	}
	return datePtr(civil(*meeting).AddDate(0, 0, days))
}

// civil truncates a timestamp to its calendar date at midnight UTC.
// Rule arithmetic is date arithmetic; time-of-day must never leak in.
func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	return &t
}
