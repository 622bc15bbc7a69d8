// Package anchor parses and exposes the calendar dates that release-task
// due dates are derived from.
//
// Two kinds of anchors exist:
//
//   - Delivery-order anchors A..F, sourced from the order record as
//     "wYYWW" week strings and pinned to the Friday of that ISO week.
//     These are immutable inputs for the lifetime of a planning session.
//   - The release-meeting anchor, chosen interactively by the user. It is
//     owned by the session, not by this package.
//
// An anchor is either absent or a fully parsed calendar date. A malformed
// week string never produces a partial date: loading degrades it to
// absent so dependent rules resolve to "no date yet" instead of crashing.
package anchor

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/order"
)

// Letter identifies one of the six delivery-order anchors.
type Letter int

// Delivery-order letters in milestone order.
const (
	DelOrderA Letter = iota
	DelOrderB
	DelOrderC
	DelOrderD
	DelOrderE
	DelOrderF
)

// String returns the single-letter name ("A".."F").
func (l Letter) String() string {
	if l < DelOrderA || l > DelOrderF {
		return fmt.Sprintf("Letter(%d)", int(l))
	}
	return string(rune('A' + int(l)))
}

// Set holds the six optional delivery-order anchor dates.
//
// Set is immutable after Load. Callers must re-invoke Load after the
// order record changes; nothing is cached across calls.
type Set struct {
	dates [6]*time.Time
}

// Load parses the order's six week-string fields into a Set.
//
// Empty fields become absent anchors. Malformed fields are logged and
// also become absent (fail closed): a bad week string on one milestone
// must not take down planning for the rest.
func Load(o *order.Order) *Set {
	s := &Set{}
	for i, raw := range o.DeliveryWeeks() {
		if raw == "" {
			continue
		}
		d, err := ParseWeek(raw)
		if err != nil {
			slog.Warn("malformed delivery-order week, treating as absent",
				"delorder", Letter(i).String(),
				"value", raw,
				"error", err,
			)
			continue
		}
		s.dates[i] = &d
	}
	return s
}

// FromDates builds a Set from already parsed anchor dates. Callers that
// hold calendar dates from somewhere other than an order record (replay,
// conformance scenarios) use this instead of Load.
func FromDates(dates map[Letter]time.Time) *Set {
	s := &Set{}
	for l, d := range dates {
		if l < DelOrderA || l > DelOrderF {
			continue
		}
		dd := d
		s.dates[l] = &dd
	}
	return s
}

// Date returns the anchor date for the given letter, or nil when absent.
func (s *Set) Date(l Letter) *time.Time {
	if l < DelOrderA || l > DelOrderF {
		return nil
	}
	return s.dates[l]
}

// Latest returns the chronologically last present anchor among A..E,
// or nil when none of A..E is present.
//
// F is deliberately excluded: the final delivery lands after the
// calibration work that "latest delivery" tasks are scheduled against,
// so including it would push those tasks past their real deadline.
func (s *Set) Latest() *time.Time {
	var latest *time.Time
	for l := DelOrderA; l <= DelOrderE; l++ {
		d := s.dates[l]
		if d == nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			latest = d
		}
	}
	return latest
}

// ParseWeek converts a "wYYWW" week string into the Friday of ISO week
// WW of year 20YY, at midnight UTC.
//
// Delivery milestones always land on Fridays, hence the fixed weekday.
func ParseWeek(raw string) (time.Time, error) {
	if len(raw) != 5 || raw[0] != 'w' {
		return time.Time{}, fmt.Errorf("week string %q: want format wYYWW", raw)
	}

	yy, err := strconv.Atoi(raw[1:3])
	if err != nil {
		return time.Time{}, fmt.Errorf("week string %q: bad year: %w", raw, err)
	}
	ww, err := strconv.Atoi(raw[3:5])
	if err != nil {
		return time.Time{}, fmt.Errorf("week string %q: bad week: %w", raw, err)
	}
	if ww < 1 || ww > 53 {
		return time.Time{}, fmt.Errorf("week string %q: week %d out of range 1..53", raw, ww)
	}

	year := 2000 + yy
	d := isoWeekFriday(year, ww)

	// Week 53 only exists in long ISO years; reject the phantom week
	// instead of silently rolling into the next year.
	if gotYear, gotWeek := d.ISOWeek(); gotYear != year || gotWeek != ww {
		return time.Time{}, fmt.Errorf("week string %q: year %d has no week %d", raw, year, ww)
	}

	return d, nil
}

// isoWeekFriday returns the Friday of the given ISO week at midnight UTC.
//
// January 4th is always inside ISO week 1, so week 1's Monday is found
// by stepping back from it; everything else is whole-week offsets.
func isoWeekFriday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	daysSinceMonday := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -daysSinceMonday)
	return week1Monday.AddDate(0, 0, (week-1)*7+4)
}
