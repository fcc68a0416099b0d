package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"roxat-report/internal/constants"
	"roxat-report/internal/storage"
)

type Period string

const (
	PeriodNone    Period = ""
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var (
	ErrUnknownPeriod      = errors.New("unknown period")
	ErrUnknownQuickFilter = errors.New("unknown quick filter")
	ErrInvalidRange       = errors.New("start date is after end date")
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return PeriodNone, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Filter selects which orders a report covers. It holds either an explicit date range
// or a named period, never both: every setter clears the other mode.
type Filter struct {
	start  *time.Time
	end    *time.Time
	period Period
	quick  string
	loc    *time.Location
}

// FilterState is the serializable view of a Filter.
type FilterState struct {
	Start       *time.Time `json:"start_date"`
	End         *time.Time `json:"end_date"`
	Period      Period     `json:"period,omitempty"`
	QuickFilter string     `json:"quick_filter,omitempty"`
	RangeActive bool       `json:"range_active"`
}

// NewFilter starts on the daily period, like the dashboard does on first open.
func NewFilter(loc *time.Location) Filter {
	if loc == nil {
		loc = time.Local
	}
	return Filter{period: PeriodDaily, loc: loc}
}

func (f Filter) State() FilterState {
	return FilterState{
		Start:       copyTime(f.start),
		End:         copyTime(f.end),
		Period:      f.period,
		QuickFilter: f.quick,
		RangeActive: f.RangeActive(),
	}
}

// RangeActive is true only when both range boundaries are set.
func (f Filter) RangeActive() bool {
	return f.start != nil && f.end != nil
}

func (f Filter) Period() Period {
	return f.period
}

// SetRange selects the inclusive range [start of start's day, end of end's day].
func (f *Filter) SetRange(start, end time.Time) error {
	s := f.day(start)
	e := f.day(end)
	if s.After(e) {
		return ErrInvalidRange
	}

	f.start, f.end = &s, &e
	f.period = PeriodNone
	f.quick = ""
	return nil
}

// SetStart sets the range start; an end date earlier than it is cleared.
func (f *Filter) SetStart(start time.Time) {
	s := f.day(start)
	f.start = &s
	if f.end != nil && s.After(*f.end) {
		f.end = nil
	}
	f.period = PeriodNone
	f.quick = ""
}

// SetEnd sets the range end; a start date later than it is cleared.
func (f *Filter) SetEnd(end time.Time) {
	e := f.day(end)
	f.end = &e
	if f.start != nil && f.start.After(e) {
		f.start = nil
	}
	f.period = PeriodNone
	f.quick = ""
}

// SetPeriod switches to a named period and drops any explicit range.
func (f *Filter) SetPeriod(p Period) error {
	if _, err := ParsePeriod(string(p)); err != nil {
		return err
	}

	f.period = p
	f.start, f.end = nil, nil
	f.quick = ""
	return nil
}

// Quick applies a preset: from the start of the day `days` days ago through today.
func (f *Filter) Quick(label string, current time.Time) error {
	q, ok := constants.QuickFilterByLabel(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuickFilter, label)
	}

	today := f.day(current)
	s := today.AddDate(0, 0, -q.Days)
	f.start, f.end = &s, &today
	f.period = PeriodNone
	f.quick = q.Label
	return nil
}

// Bounds returns the instants the filter compares against. For a range both are inclusive;
// for a period only the start is meaningful and it is exclusive.
func (f Filter) Bounds(current time.Time) (from, to time.Time, ok bool) {
	if f.RangeActive() {
		loc := f.location()
		return now.With(f.start.In(loc)).BeginningOfDay(), now.With(f.end.In(loc)).EndOfDay(), true
	}

	if f.period == PeriodNone {
		return time.Time{}, time.Time{}, false
	}

	return f.periodStart(current), time.Time{}, true
}

// Apply returns the orders the filter selects, keeping their order. Orders without a
// timestamp never pass an active filter.
func (f Filter) Apply(orders []storage.Order, current time.Time) []storage.Order {
	if len(orders) == 0 {
		return []storage.Order{}
	}

	from, to, ok := f.Bounds(current)
	if !ok {
		out := make([]storage.Order, len(orders))
		copy(out, orders)
		return out
	}

	out := make([]storage.Order, 0, len(orders))
	for _, o := range orders {
		if !o.HasDate() {
			continue
		}

		if f.RangeActive() {
			if !o.Date.Before(from) && !o.Date.After(to) {
				out = append(out, o)
			}
			continue
		}

		if o.Date.After(from) {
			out = append(out, o)
		}
	}

	return out
}

// Label is the report header for the current selection.
func (f Filter) Label(current time.Time) string {
	if f.RangeActive() {
		loc := f.location()
		return fmt.Sprintf("Report • %s - %s", f.start.In(loc).Format(labelDate), f.end.In(loc).Format(labelDate))
	}

	name, ok := constants.PeriodLabels[string(f.period)]
	if !ok {
		name = constants.PeriodLabels[string(PeriodDaily)]
	}

	return fmt.Sprintf("%s report • %s", name, current.In(f.location()).Format(labelDate))
}

const labelDate = "02.01.2006"

func (f Filter) periodStart(current time.Time) time.Time {
	n := now.With(current.In(f.location()))

	switch f.period {
	case PeriodMonthly:
		return n.BeginningOfMonth()
	case PeriodYearly:
		return n.BeginningOfYear()
	default:
		return n.BeginningOfDay()
	}
}

func (f Filter) day(t time.Time) time.Time {
	return now.With(t.In(f.location())).BeginningOfDay()
}

func (f Filter) location() *time.Location {
	if f.loc == nil {
		return time.Local
	}
	return f.loc
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
