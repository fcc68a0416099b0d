package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// FilterDate is a range boundary sent by the client: a full RFC3339 instant or a bare
// YYYY-MM-DD from a date picker. A bare date is read in the dashboard's location.
type FilterDate struct {
	Time     time.Time
	DateOnly bool
}

func DateAt(t time.Time) *FilterDate {
	return &FilterDate{Time: t}
}

// Day builds a bare calendar date, as a date picker sends it.
func Day(year int, month time.Month, day int) *FilterDate {
	return &FilterDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

func (fd *FilterDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*fd = FilterDate{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse(dateLayout, s); err == nil {
		*fd = FilterDate{Time: t, DateOnly: true}
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("date %q is neither YYYY-MM-DD nor RFC3339", s)
	}
	*fd = FilterDate{Time: t}
	return nil
}

func (fd FilterDate) MarshalJSON() ([]byte, error) {
	if fd.DateOnly {
		return json.Marshal(fd.Time.Format(dateLayout))
	}
	return json.Marshal(fd.Time)
}

// In resolves the boundary to an instant. A bare date becomes midnight in loc.
func (fd FilterDate) In(loc *time.Location) time.Time {
	if !fd.DateOnly {
		return fd.Time
	}
	y, m, d := fd.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
