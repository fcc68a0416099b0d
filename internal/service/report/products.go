package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"roxat-report/internal/constants"
)

type AggregatedProduct struct {
	Key           string          `json:"key"`
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	OrderCount    int             `json:"order_count"`
}

type productKey struct {
	name     string
	category string
}

// FilterSoldItems keeps the items of one category; "all" keeps everything.
func FilterSoldItems(items []SoldItem, category string) []SoldItem {
	if category == "" || category == constants.CategoryAll {
		out := make([]SoldItem, len(items))
		copy(out, items)
		return out
	}

	out := make([]SoldItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Products groups sold items by (name, category). The category filter is applied before
// sorting; the result is always ordered by total quantity, highest first.
func Products(items []SoldItem, category string) []AggregatedProduct {
	groups := make(map[productKey]*AggregatedProduct)
	orders := make(map[productKey]map[string]struct{})
	var keys []productKey

	for _, it := range items {
		k := productKey{name: it.ItemName, category: it.Category}

		p, ok := groups[k]
		if !ok {
			p = &AggregatedProduct{
				Key:           it.ItemName + "-" + it.Category,
				ItemName:      it.ItemName,
				Category:      it.Category,
				TotalQuantity: decimal.Zero,
				TotalRevenue:  decimal.Zero,
				AvgPrice:      decimal.Zero,
			}
			groups[k] = p
			orders[k] = make(map[string]struct{})
			keys = append(keys, k)
		}

		p.TotalQuantity = p.TotalQuantity.Add(it.Quantity)
		p.TotalRevenue = p.TotalRevenue.Add(it.Subtotal)
		orders[k][it.OrderID] = struct{}{}
	}

	out := make([]AggregatedProduct, 0, len(keys))
	for _, k := range keys {
		p := groups[k]
		if category != "" && category != constants.CategoryAll && p.Category != category {
			continue
		}

		if p.TotalQuantity.IsPositive() {
			p.AvgPrice = p.TotalRevenue.Div(p.TotalQuantity)
		}
		p.OrderCount = len(orders[k])
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalQuantity.GreaterThan(out[j].TotalQuantity)
	})

	return out
}

// Categories lists "all" followed by the distinct categories in sorted order.
func Categories(items []SoldItem) []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, it := range items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		cats = append(cats, it.Category)
	}
	sort.Strings(cats)

	return append([]string{constants.CategoryAll}, cats...)
}
