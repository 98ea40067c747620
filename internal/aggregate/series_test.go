package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesSeriesSumsCompletedOrdersPerDay(t *testing.T) {
	orders := decodeOrders(t, `[
		{"status":"completed","total":"100","created_at":"2024-06-01T04:00:00"},
		{"status":"Completed","total":"50.5","created_at":"2024-06-01T20:00:00"},
		{"status":"canceled","total":"999","created_at":"2024-06-02T10:00:00"},
		{"status":"completed","total":"25","created_at":"2024-06-03T10:00:00"},
		{"status":"completed","total":"70","created_at":"2024-05-20T10:00:00"},
		{"status":"completed","total":"70","created_at":"bogus"}
	]`)
	b := NewBucketer(time.UTC)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	series := SalesSeries(orders, b, from, to)

	require.Len(t, series, len(b.Days(from, to)))
	assert.InDelta(t, 150.5, series[0].Value, 1e-9)
	assert.InDelta(t, 0, series[1].Value, 1e-9)
	assert.InDelta(t, 25, series[2].Value, 1e-9)
	assert.InDelta(t, 175.5, SeriesTotal(series), 1e-9)
	assert.Equal(t, "01/06", series[0].Label)
}

func TestSalesSeriesRespectsZone(t *testing.T) {
	orders := decodeOrders(t, `[{"status":"completed","total":"10","created_at":"2024-06-01T20:00:00"}]`)
	b := NewBucketer(time.FixedZone("IST", 5*3600+1800))
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, b.Location())
	to := time.Date(2024, 6, 2, 0, 0, 0, 0, b.Location())

	series := SalesSeries(orders, b, from, to)

	require.Len(t, series, 2)
	assert.Zero(t, series[0].Value)
	assert.InDelta(t, 10, series[1].Value, 1e-9)
}

func TestRangeFromKey(t *testing.T) {
	b := NewBucketer(time.UTC)
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	from, to, label := RangeFromKey("today", now, b)
	assert.True(t, from.Equal(today))
	assert.True(t, to.Equal(today))
	assert.Equal(t, "Today", label)

	from, to, label = RangeFromKey("Yesterday", now, b)
	assert.True(t, from.Equal(today.AddDate(0, 0, -1)))
	assert.True(t, to.Equal(from))
	assert.Equal(t, "Yesterday", label)

	from, to, label = RangeFromKey("30", now, b)
	assert.True(t, from.Equal(today.AddDate(0, 0, -29)))
	assert.True(t, to.Equal(today))
	assert.Equal(t, "Last 30 days", label)
	assert.Len(t, b.Days(from, to), 30)

	from, _, label = RangeFromKey("90d", now, b)
	assert.True(t, from.Equal(today.AddDate(0, 0, -89)))
	assert.Equal(t, "Last 90 days", label)

	for _, key := range []string{"", "week", "-3", "0"} {
		from, _, label = RangeFromKey(key, now, b)
		assert.True(t, from.Equal(today.AddDate(0, 0, -6)), key)
		assert.Equal(t, "Last 7 days", label, key)
	}

	from, _, _ = RangeFromKey("5000", now, b)
	assert.Len(t, b.Days(from, now), MaxRangeDays)
}

func TestMonthlyRevenue(t *testing.T) {
	orders := decodeOrders(t, `[
		{"status":"completed","total":"100.4","created_at":"2024-06-02T10:00:00"},
		{"status":"completed","total":"0.2","created_at":"2024-06-20T10:00:00"},
		{"status":"canceled","total":"500","created_at":"2024-06-21T10:00:00"},
		{"status":"completed","total":"50.5","created_at":"2024-01-10T10:00:00"},
		{"status":"completed","total":"77","created_at":"2023-06-10T10:00:00"}
	]`)
	now := time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)

	points := MonthlyRevenue(orders, time.UTC, now, 12)

	require.Len(t, points, 12)
	assert.Equal(t, "2023-07", points[0].Month)
	assert.Equal(t, "2024-06", points[11].Month)
	assert.Equal(t, 101.0, points[11].Value)
	assert.Equal(t, "2024-01", points[6].Month)
	assert.Equal(t, 51.0, points[6].Value)
	assert.Zero(t, points[0].Value)

	assert.Empty(t, MonthlyRevenue(orders, time.UTC, now, 0))
}
