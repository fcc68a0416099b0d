package report

import (
	"time"

	"roxat-report/internal/constants"
	"roxat-report/internal/storage"
)

// Report is the full dashboard view derived from one raw order set.
type Report struct {
	Label         string              `json:"label"`
	Filter        FilterState         `json:"filter"`
	Category      string              `json:"category"`
	RawOrders     int                 `json:"raw_orders"`
	Summary       SummaryStats        `json:"summary"`
	Waiters       []WaiterStats       `json:"waiters"`
	PopularDishes []DishStats         `json:"popular_dishes"`
	SoldItems     []SoldItem          `json:"sold_items"`
	Products      []AggregatedProduct `json:"products"`
	Categories    []string            `json:"categories"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// Build filters, aggregates and applies the category filter. It is a pure function of
// its arguments.
func Build(orders []storage.Order, f Filter, category string, current time.Time) Report {
	if category == "" {
		category = constants.CategoryAll
	}

	filtered := f.Apply(orders, current)
	agg := Aggregate(filtered, len(orders), f.RangeActive())

	return Report{
		Label:         f.Label(current),
		Filter:        f.State(),
		Category:      category,
		RawOrders:     len(orders),
		Summary:       agg.Summary,
		Waiters:       agg.Waiters,
		PopularDishes: agg.PopularDishes,
		SoldItems:     FilterSoldItems(agg.SoldItems, category),
		Products:      Products(agg.SoldItems, category),
		Categories:    Categories(agg.SoldItems),
		GeneratedAt:   current,
	}
}
