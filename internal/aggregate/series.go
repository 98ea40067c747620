package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"invoiceflow/backend/internal/domain"
)

const (
	DefaultRangeDays = 7
	MaxRangeDays     = 366
)

// SalesSeries buckets completed-order totals into one bucket per day of
// [from, to]. Orders outside the range or with invalid timestamps are ignored.
func SalesSeries(orders []domain.Order, b Bucketer, from time.Time, to time.Time) []domain.Bucket {
	buckets := b.Days(from, to)
	index := make(map[string]int, len(buckets))
	for i, bucket := range buckets {
		index[bucket.Key] = i
	}
	for _, o := range orders {
		if !StatusMatches(o.Status, "complete") {
			continue
		}
		if i, ok := index[b.DayKey(o.OccurredAt())]; ok {
			buckets[i].Value += o.Total.Float()
		}
	}
	return buckets
}

// SeriesTotal adds up bucket values.
func SeriesTotal(buckets []domain.Bucket) float64 {
	total := 0.0
	for _, bucket := range buckets {
		total += bucket.Value
	}
	return total
}

// RangeFromKey resolves a chart range key into inclusive calendar days.
// Accepted keys are "today", "yesterday" and a day count such as "7",
// "30" or "90d". Anything else falls back to the last 7 days.
func RangeFromKey(key string, now time.Time, b Bucketer) (time.Time, time.Time, string) {
	today := b.StartOfDay(now)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "today":
		return today, today, "Today"
	case "yesterday":
		y := b.DaysBack(now, 1)
		return y, y, "Yesterday"
	}

	days, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "d"))
	if err != nil || days < 1 {
		days = DefaultRangeDays
	}
	if days > MaxRangeDays {
		days = MaxRangeDays
	}
	return b.DaysBack(now, days-1), today, fmt.Sprintf("Last %d days", days)
}

// MonthlyRevenue sums completed-order totals per calendar month for the last
// `months` months ending with the month of now. Values are rounded to whole
// currency units.
func MonthlyRevenue(orders []domain.Order, loc *time.Location, now time.Time, months int) []domain.MonthlyPoint {
	if months <= 0 {
		return []domain.MonthlyPoint{}
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	points := make([]domain.MonthlyPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := first.AddDate(0, i-(months-1), 0)
		key := month.Format("2006-01")
		points[i] = domain.MonthlyPoint{Month: key}
		index[key] = i
	}

	sums := make([]float64, months)
	for _, o := range orders {
		if !StatusMatches(o.Status, "complete") {
			continue
		}
		at := o.OccurredAt()
		if at.IsZero() {
			continue
		}
		if i, ok := index[at.In(loc).Format("2006-01")]; ok {
			sums[i] += o.Total.Float()
		}
	}
	for i := range points {
		points[i].Value = math.Round(sums[i])
	}
	return points
}
