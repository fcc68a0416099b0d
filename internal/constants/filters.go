package constants

// QuickFilter is a preset that selects the last Days days up to the end of today.
type QuickFilter struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

var (
	QuickFilters = []QuickFilter{
		{Label: "Today", Days: 0},
		{Label: "Yesterday", Days: 1},
		{Label: "7 days", Days: 7},
		{Label: "15 days", Days: 15},
		{Label: "30 days", Days: 30},
		{Label: "Yearly", Days: 365},
	}

	// заголовки отчета по периоду
	PeriodLabels = map[string]string{
		"daily":   "Daily",
		"monthly": "Monthly",
		"yearly":  "Yearly",
	}
)

const (
	CategoryAll = "all"

	// PopularDishesLimit caps the popular dishes list.
	PopularDishesLimit = 10
)

func QuickFilterByLabel(label string) (QuickFilter, bool) {
	for _, q := range QuickFilters {
		if q.Label == label {
			return q, true
		}
	}
	return QuickFilter{}, false
}
