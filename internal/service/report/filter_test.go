package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roxat-report/internal/storage"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ordersAt(stamps ...string) []storage.Order {
	orders := make([]storage.Order, 0, len(stamps))
	for _, s := range stamps {
		o := storage.Order{ID: s}
		if s != "" {
			o.Date = at(s)
		}
		orders = append(orders, o)
	}
	return orders
}

func ids(orders []storage.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

var current = at("2026-10-17T15:00:00Z")

func TestFilter_RangeIsInclusiveOnBothEnds(t *testing.T) {
	f := NewFilter(time.UTC)
	require.NoError(t, f.SetRange(at("2026-10-10T13:00:00Z"), at("2026-10-12T01:00:00Z")))

	orders := ordersAt(
		"2026-10-09T23:59:59.999Z",
		"2026-10-10T00:00:00Z",
		"2026-10-11T12:00:00Z",
		"2026-10-12T23:59:59.999999999Z",
		"2026-10-13T00:00:00Z",
	)

	got := f.Apply(orders, current)

	assert.Equal(t, []string{
		"2026-10-10T00:00:00Z",
		"2026-10-11T12:00:00Z",
		"2026-10-12T23:59:59.999999999Z",
	}, ids(got))
}

func TestFilter_PeriodStartIsExclusive(t *testing.T) {
	tests := []struct {
		period Period
		orders []string
		want   []string
	}{
		{
			period: PeriodDaily,
			orders: []string{"2026-10-17T00:00:00Z", "2026-10-17T00:00:01Z", "2026-10-16T23:00:00Z"},
			want:   []string{"2026-10-17T00:00:01Z"},
		},
		{
			period: PeriodMonthly,
			orders: []string{"2026-10-01T00:00:00Z", "2026-10-01T00:00:00.001Z", "2026-09-30T12:00:00Z"},
			want:   []string{"2026-10-01T00:00:00.001Z"},
		},
		{
			period: PeriodYearly,
			orders: []string{"2026-01-01T00:00:00Z", "2026-03-08T10:00:00Z", "2025-12-31T23:59:59Z"},
			want:   []string{"2026-03-08T10:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			f := NewFilter(time.UTC)
			require.NoError(t, f.SetPeriod(tt.period))

			assert.Equal(t, tt.want, ids(f.Apply(ordersAt(tt.orders...), current)))
		})
	}
}

func TestFilter_UsesConfiguredLocation(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*3600)
	f := NewFilter(tashkent)

	// 20:30 UTC 16-го это уже 17-е в Ташкенте
	orders := ordersAt("2026-10-16T20:30:00Z", "2026-10-16T18:30:00Z")

	assert.Equal(t, []string{"2026-10-16T20:30:00Z"}, ids(f.Apply(orders, current)))
}

func TestFilter_ModesAreMutuallyExclusive(t *testing.T) {
	f := NewFilter(time.UTC)
	assert.Equal(t, PeriodDaily, f.Period())
	assert.False(t, f.RangeActive())

	require.NoError(t, f.Quick("7 days", current))
	state := f.State()
	assert.True(t, state.RangeActive)
	assert.Equal(t, PeriodNone, state.Period)
	assert.Equal(t, "7 days", state.QuickFilter)
	assert.Equal(t, at("2026-10-10T00:00:00Z"), *state.Start)
	assert.Equal(t, at("2026-10-17T00:00:00Z"), *state.End)

	require.NoError(t, f.SetPeriod(PeriodMonthly))
	state = f.State()
	assert.False(t, state.RangeActive)
	assert.Nil(t, state.Start)
	assert.Nil(t, state.End)
	assert.Empty(t, state.QuickFilter)
	assert.Equal(t, PeriodMonthly, state.Period)

	require.NoError(t, f.SetRange(at("2026-10-01T00:00:00Z"), at("2026-10-05T00:00:00Z")))
	state = f.State()
	assert.True(t, state.RangeActive)
	assert.Equal(t, PeriodNone, state.Period)
	assert.Empty(t, state.QuickFilter)

	// после смены режима период больше не действует: заказ вне диапазона, но в этом месяце
	orders := ordersAt("2026-10-03T10:00:00Z", "2026-10-15T10:00:00Z")
	assert.Equal(t, []string{"2026-10-03T10:00:00Z"}, ids(f.Apply(orders, current)))
}

func TestFilter_StartAfterEndNeverPersists(t *testing.T) {
	t.Run("start later than end clears end", func(t *testing.T) {
		f := NewFilter(time.UTC)
		f.SetEnd(at("2026-10-05T00:00:00Z"))
		f.SetStart(at("2026-10-06T00:00:00Z"))

		state := f.State()
		require.NotNil(t, state.Start)
		assert.Nil(t, state.End)
		assert.False(t, state.RangeActive)
	})

	t.Run("end earlier than start clears start", func(t *testing.T) {
		f := NewFilter(time.UTC)
		f.SetStart(at("2026-10-06T00:00:00Z"))
		f.SetEnd(at("2026-10-05T00:00:00Z"))

		state := f.State()
		assert.Nil(t, state.Start)
		require.NotNil(t, state.End)
	})

	t.Run("same day is a valid range", func(t *testing.T) {
		f := NewFilter(time.UTC)
		f.SetStart(at("2026-10-06T18:00:00Z"))
		f.SetEnd(at("2026-10-06T01:00:00Z"))

		assert.True(t, f.RangeActive())
	})

	t.Run("SetRange rejects inverted range", func(t *testing.T) {
		f := NewFilter(time.UTC)
		err := f.SetRange(at("2026-10-06T00:00:00Z"), at("2026-10-05T00:00:00Z"))

		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Equal(t, PeriodDaily, f.Period(), "состояние не должно меняться")
	})
}

func TestFilter_HalfRangeFiltersNothing(t *testing.T) {
	f := NewFilter(time.UTC)
	f.SetStart(at("2026-10-06T00:00:00Z"))

	orders := ordersAt("2020-01-01T00:00:00Z", "", "2026-10-17T10:00:00Z")

	assert.Len(t, f.Apply(orders, current), 3)
}

func TestFilter_UndatedOrdersNeverMatchActiveFilter(t *testing.T) {
	f := NewFilter(time.UTC)

	assert.Empty(t, f.Apply(ordersAt(""), current))
}

func TestFilter_Errors(t *testing.T) {
	f := NewFilter(time.UTC)

	assert.ErrorIs(t, f.Quick("2 weeks", current), ErrUnknownQuickFilter)
	assert.ErrorIs(t, f.SetPeriod("weekly"), ErrUnknownPeriod)

	_, err := ParsePeriod("hourly")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestFilter_Label(t *testing.T) {
	f := NewFilter(time.UTC)
	assert.Equal(t, "Daily report • 17.10.2026", f.Label(current))

	require.NoError(t, f.SetPeriod(PeriodYearly))
	assert.Equal(t, "Yearly report • 17.10.2026", f.Label(current))

	require.NoError(t, f.SetRange(at("2026-10-01T00:00:00Z"), at("2026-10-05T00:00:00Z")))
	assert.Equal(t, "Report • 01.10.2026 - 05.10.2026", f.Label(current))
}
