package storage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Upstream data shape has varied over time. The types below never fail to decode:
// a value of the wrong shape decodes as the zero value.

// Number accepts JSON numbers and numeric strings.
type Number struct {
	value decimal.Decimal
	set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		*n = Number{value: d, set: true}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return nil
		}
		*n = Number{value: d, set: true}
	}

	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func (n Number) Decimal() decimal.Decimal {
	if !n.set {
		return decimal.Zero
	}
	return n.value
}

// Text accepts strings and numbers; table and order numbers arrive as either.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = Text(data)
	}

	return nil
}

func (t Text) String() string {
	return string(t)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts RFC3339-like strings and unix milliseconds.
type Timestamp struct {
	t time.Time
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				ts.t = t
				return nil
			}
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err == nil {
			ts.t = time.UnixMilli(ms)
		}
	}

	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t)
}

func (ts Timestamp) Time() time.Time {
	return ts.t
}

// RawItems skips elements that are not objects and treats a non-array as empty.
type RawItems []RawItem

func (items *RawItems) UnmarshalJSON(data []byte) error {
	*items = nil

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}

	out := make(RawItems, 0, len(elems))
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			continue
		}
		var item RawItem
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		out = append(out, item)
	}

	*items = out
	return nil
}

// UnmarshalJSON keeps a present-but-malformed breakdown as an all-zero one.
func (m *MixedPayment) UnmarshalJSON(data []byte) error {
	*m = MixedPayment{}

	type alias MixedPayment
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return nil
	}

	*m = MixedPayment(a)
	return nil
}

// DecodeOrders decodes an order list payload. A null payload is an empty list; anything
// other than an array is an error. Array elements that are not objects are dropped.
func DecodeOrders(data []byte) ([]RawOrder, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []RawOrder{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}

	orders := make([]RawOrder, 0, len(elems))
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			continue
		}
		var order RawOrder
		if err := json.Unmarshal(elem, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	return orders, nil
}
