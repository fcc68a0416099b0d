package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"roxat-report/internal/constants"
	"roxat-report/internal/storage"
)

var hundred = decimal.NewFromInt(100)

type SummaryStats struct {
	TotalOrders        int             `json:"total_orders"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalCash          decimal.Decimal `json:"total_cash"`
	TotalCard          decimal.Decimal `json:"total_card"`
	TotalClick         decimal.Decimal `json:"total_click"`
	TotalServiceAmount decimal.Decimal `json:"total_service_amount"`
	AverageOrderValue  decimal.Decimal `json:"average_order_value"`
	GrowthRate         decimal.Decimal `json:"growth_rate"`
}

type WaiterStats struct {
	Name              string          `json:"name"`
	Orders            int             `json:"orders"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

type DishStats struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Sold     decimal.Decimal `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SoldItem is one (order, line item) pair.
type SoldItem struct {
	Key         string          `json:"key"`
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number,omitempty"`
	Date        time.Time       `json:"date"`
	ItemName    string          `json:"item_name"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	WaiterName  string          `json:"waiter_name,omitempty"`
	TableNumber string          `json:"table_number,omitempty"`
}

// Aggregation is everything a single pass over the filtered orders yields.
type Aggregation struct {
	Summary       SummaryStats  `json:"summary"`
	Waiters       []WaiterStats `json:"waiters"`
	PopularDishes []DishStats   `json:"popular_dishes"`
	SoldItems     []SoldItem    `json:"sold_items"`
}

func emptyAggregation() Aggregation {
	return Aggregation{
		Summary: SummaryStats{
			TotalIncome:        decimal.Zero,
			TotalCash:          decimal.Zero,
			TotalCard:          decimal.Zero,
			TotalClick:         decimal.Zero,
			TotalServiceAmount: decimal.Zero,
			AverageOrderValue:  decimal.Zero,
			GrowthRate:         decimal.Zero,
		},
		Waiters:       []WaiterStats{},
		PopularDishes: []DishStats{},
		SoldItems:     []SoldItem{},
	}
}

// Aggregate reduces the filtered orders. totalCount is the size of the unfiltered set and
// only feeds the growth rate, which is fixed at zero while an explicit range is active.
func Aggregate(orders []storage.Order, totalCount int, rangeActive bool) Aggregation {
	agg := emptyAggregation()
	if len(orders) == 0 {
		return agg
	}

	s := &agg.Summary
	waiters := make(map[string]*WaiterStats)
	var waiterOrder []string
	dishes := make(map[string]*DishStats)
	var dishOrder []string

	for _, o := range orders {
		s.TotalOrders++
		s.TotalIncome = s.TotalIncome.Add(o.Total)
		s.TotalServiceAmount = s.TotalServiceAmount.Add(o.Service)

		switch o.Payment {
		case storage.PaymentCash:
			s.TotalCash = s.TotalCash.Add(o.Total)
		case storage.PaymentCard:
			s.TotalCard = s.TotalCard.Add(o.Total)
		case storage.PaymentClick:
			s.TotalClick = s.TotalClick.Add(o.Total)
		case storage.PaymentMixed:
			s.TotalCash = s.TotalCash.Add(o.CashAmount)
			s.TotalCard = s.TotalCard.Add(o.CardAmount)
		}

		if o.WaiterName != "" {
			w, ok := waiters[o.WaiterName]
			if !ok {
				w = &WaiterStats{
					Name:              o.WaiterName,
					TotalSales:        decimal.Zero,
					TotalCommission:   decimal.Zero,
					CommissionPercent: decimal.Zero,
				}
				waiters[o.WaiterName] = w
				waiterOrder = append(waiterOrder, o.WaiterName)
			}
			w.Orders++
			w.TotalSales = w.TotalSales.Add(o.Total)
			w.TotalCommission = w.TotalCommission.Add(o.Service)
		}

		for i, it := range o.Items {
			subtotal := it.Price.Mul(it.Quantity)

			d, ok := dishes[it.Name]
			if !ok {
				// первая встреченная категория остается за блюдом
				d = &DishStats{Name: it.Name, Category: it.Category, Sold: decimal.Zero, Revenue: decimal.Zero}
				dishes[it.Name] = d
				dishOrder = append(dishOrder, it.Name)
			}
			d.Sold = d.Sold.Add(it.Quantity)
			d.Revenue = d.Revenue.Add(subtotal)

			agg.SoldItems = append(agg.SoldItems, SoldItem{
				Key:         soldItemKey(o, it, i),
				OrderID:     o.ID,
				OrderNumber: o.Number,
				Date:        o.Date,
				ItemName:    it.Name,
				Category:    it.Category,
				Quantity:    it.Quantity,
				Price:       it.Price,
				Subtotal:    subtotal,
				WaiterName:  o.WaiterName,
				TableNumber: o.TableNumber,
			})
		}
	}

	s.AverageOrderValue = s.TotalIncome.Div(decimal.NewFromInt(int64(s.TotalOrders)))
	s.GrowthRate = growthRate(s.TotalOrders, totalCount, rangeActive)

	for _, name := range waiterOrder {
		w := waiters[name]
		if s.TotalServiceAmount.IsPositive() {
			w.CommissionPercent = w.TotalCommission.Div(s.TotalServiceAmount).Mul(hundred).Round(1)
		}
		agg.Waiters = append(agg.Waiters, *w)
	}
	sort.SliceStable(agg.Waiters, func(i, j int) bool {
		return agg.Waiters[i].TotalCommission.GreaterThan(agg.Waiters[j].TotalCommission)
	})

	for _, name := range dishOrder {
		agg.PopularDishes = append(agg.PopularDishes, *dishes[name])
	}
	sort.SliceStable(agg.PopularDishes, func(i, j int) bool {
		return agg.PopularDishes[i].Sold.GreaterThan(agg.PopularDishes[j].Sold)
	})
	if len(agg.PopularDishes) > constants.PopularDishesLimit {
		agg.PopularDishes = agg.PopularDishes[:constants.PopularDishesLimit]
	}

	sort.SliceStable(agg.SoldItems, func(i, j int) bool {
		return agg.SoldItems[i].Date.After(agg.SoldItems[j].Date)
	})

	return agg
}

// growthRate keeps the dashboard's historical formula:
// filtered / (total - filtered), divisor 1 when that is zero, as a percentage with one decimal.
func growthRate(filtered, total int, rangeActive bool) decimal.Decimal {
	if rangeActive {
		return decimal.Zero
	}

	divisor := total - filtered
	if divisor == 0 {
		divisor = 1
	}

	return decimal.NewFromInt(int64(filtered)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(divisor))).
		Round(1)
}

func soldItemKey(o storage.Order, it storage.Item, idx int) string {
	if it.ID != "" {
		return o.ID + "-" + it.ID
	}
	return o.ID + "-" + strconv.Itoa(idx)
}
