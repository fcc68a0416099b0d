package storage

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is used for line items that carry no category.
const DefaultCategory = "Other"

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentClick   PaymentMethod = "click"
	PaymentMixed   PaymentMethod = "mixed"
	PaymentUnknown PaymentMethod = ""
)

// RawOrder is an order record exactly as the order API delivers it. Several attributes
// come under two names; Normalize decides which one wins.
type RawOrder struct {
	ID          Text          `json:"_id"`
	AltID       Text          `json:"id"`
	OrderDate   Timestamp     `json:"order_date"`
	CreatedAt   Timestamp     `json:"createdAt"`
	FinalTotal  Number        `json:"final_total"`
	TotalPrice  Number        `json:"total_price"`
	Service     Number        `json:"service_amount"`
	Payment     Text          `json:"paymentMethod"`
	Mixed       *MixedPayment `json:"mixedPaymentDetails"`
	WaiterName  Text          `json:"waiter_name"`
	TableNumber Text          `json:"table_number"`
	DailyNumber Text          `json:"daily_order_number"`
	OrderNumber Text          `json:"order_number"`
	Status      Text          `json:"status"`
	Items       RawItems      `json:"items"`
	Ordered     RawItems      `json:"ordered_items"`
}

type RawItem struct {
	ID           Text   `json:"_id"`
	Name         Text   `json:"name"`
	ItemName     Text   `json:"item_name"`
	Quantity     Number `json:"quantity"`
	Price        Number `json:"price"`
	UnitPrice    Number `json:"unit_price"`
	CategoryName Text   `json:"category_name"`
	Category     Text   `json:"category"`
}

type MixedPayment struct {
	CashAmount Number `json:"cashAmount"`
	CardAmount Number `json:"cardAmount"`
}

// Order is the canonical order record every report is computed from.
type Order struct {
	ID          string          `json:"id"`
	Number      string          `json:"order_number,omitempty"`
	Date        time.Time       `json:"date"`
	Total       decimal.Decimal `json:"total"`
	Service     decimal.Decimal `json:"service_amount"`
	Payment     PaymentMethod   `json:"payment_method"`
	CashAmount  decimal.Decimal `json:"cash_amount"`
	CardAmount  decimal.Decimal `json:"card_amount"`
	WaiterName  string          `json:"waiter_name,omitempty"`
	TableNumber string          `json:"table_number,omitempty"`
	Status      string          `json:"status,omitempty"`
	Items       []Item          `json:"items"`
}

type Item struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// HasDate reports whether the order carried a usable timestamp.
func (o Order) HasDate() bool {
	return !o.Date.IsZero()
}

// Normalize resolves the alternate field names of a raw record into an Order.
// Lookup order per attribute:
//
//	id:        _id, id
//	date:      order_date, createdAt
//	total:     final_total, total_price, 0
//	number:    daily_order_number, order_number
//	items:     items, ordered_items
//	item name: name, item_name
//	price:     price, unit_price, 0
//	quantity:  quantity, 1
//	category:  category_name, category, DefaultCategory
//
// A zero number counts as absent, so a zero final_total falls through to total_price.
func Normalize(raw RawOrder) Order {
	order := Order{
		ID:          firstText(raw.ID, raw.AltID),
		Number:      firstText(raw.DailyNumber, raw.OrderNumber),
		Total:       firstNumber(raw.FinalTotal, raw.TotalPrice),
		Service:     raw.Service.Decimal(),
		WaiterName:  strings.TrimSpace(raw.WaiterName.String()),
		TableNumber: raw.TableNumber.String(),
		Status:      raw.Status.String(),
		CashAmount:  decimal.Zero,
		CardAmount:  decimal.Zero,
	}

	order.Date = raw.OrderDate.Time()
	if order.Date.IsZero() {
		order.Date = raw.CreatedAt.Time()
	}

	switch method := PaymentMethod(strings.ToLower(strings.TrimSpace(raw.Payment.String()))); method {
	case PaymentCash, PaymentCard, PaymentClick:
		order.Payment = method
	default:
		if raw.Mixed != nil {
			order.Payment = PaymentMixed
			order.CashAmount = raw.Mixed.CashAmount.Decimal()
			order.CardAmount = raw.Mixed.CardAmount.Decimal()
		}
	}

	rawItems := raw.Items
	if len(rawItems) == 0 {
		rawItems = raw.Ordered
	}

	order.Items = make([]Item, 0, len(rawItems))
	for _, ri := range rawItems {
		qty := ri.Quantity.Decimal()
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}

		category := firstText(ri.CategoryName, ri.Category)
		if category == "" {
			category = DefaultCategory
		}

		order.Items = append(order.Items, Item{
			ID:       ri.ID.String(),
			Name:     firstText(ri.Name, ri.ItemName),
			Category: category,
			Quantity: qty,
			Price:    firstNumber(ri.Price, ri.UnitPrice),
		})
	}

	return order
}

// NormalizeAll keeps the input order.
func NormalizeAll(raw []RawOrder) []Order {
	orders := make([]Order, 0, len(raw))
	for _, r := range raw {
		orders = append(orders, Normalize(r))
	}
	return orders
}

func firstText(values ...Text) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(values ...Number) decimal.Decimal {
	for _, v := range values {
		if d := v.Decimal(); !d.IsZero() {
			return d
		}
	}
	return decimal.Zero
}
