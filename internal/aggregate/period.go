package aggregate

import (
	"strings"
	"time"

	"invoiceflow/backend/internal/domain"
)

// Percent is the period-over-period change. A zero previous value never
// divides: growth from nothing is +100%, nothing to nothing is 0%.
func Percent(current float64, previous float64) float64 {
	if previous != 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// StatusMatches is a case-insensitive substring test, so "complete" matches
// "Completed" and "cancel" matches both "canceled" and "cancelled".
func StatusMatches(status string, substr string) bool {
	return strings.Contains(strings.ToLower(status), strings.ToLower(substr))
}

// Compare sums metric over the records that fall into each window.
func Compare[T any](records []T, at func(T) time.Time, metric func(T) float64, current Window, previous Window) domain.PeriodDelta {
	var cur, prev float64
	for _, record := range records {
		t := at(record)
		if current.Contains(t) {
			cur += metric(record)
		}
		if previous.Contains(t) {
			prev += metric(record)
		}
	}
	return domain.PeriodDelta{
		Current:  cur,
		Previous: prev,
		Percent:  Percent(cur, prev),
	}
}

func CompareOrders(orders []domain.Order, metric func(domain.Order) float64, current Window, previous Window) domain.PeriodDelta {
	return Compare(orders, OrderTime, metric, current, previous)
}

func CompareCustomers(customers []domain.Customer, current Window, previous Window) domain.PeriodDelta {
	return Compare(customers, CustomerTime, CustomerCount, current, previous)
}

func OrderTime(o domain.Order) time.Time {
	return o.OccurredAt()
}

func CustomerTime(c domain.Customer) time.Time {
	return c.CreatedAt.Time
}

// CompletedTotal is the order total for completed orders and 0 otherwise.
func CompletedTotal(o domain.Order) float64 {
	if !StatusMatches(o.Status, "complete") {
		return 0
	}
	return o.Total.Float()
}

func OrderCount(domain.Order) float64 {
	return 1
}

func CustomerCount(domain.Customer) float64 {
	return 1
}

// StatusCount counts orders whose status contains substr.
func StatusCount(substr string) func(domain.Order) float64 {
	return func(o domain.Order) float64 {
		if StatusMatches(o.Status, substr) {
			return 1
		}
		return 0
	}
}

// SumTotals adds every order total regardless of status.
func SumTotals(orders []domain.Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.Total.Float()
	}
	return total
}

func CountStatus(orders []domain.Order, substr string) int {
	count := 0
	for _, o := range orders {
		if StatusMatches(o.Status, substr) {
			count++
		}
	}
	return count
}

func FilterOrders(orders []domain.Order, w Window) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if w.Contains(o.OccurredAt()) {
			out = append(out, o)
		}
	}
	return out
}

// CancelRatio is the share of orders in w that were cancelled, 0 when the
// window holds no orders.
func CancelRatio(orders []domain.Order, w Window) float64 {
	total, cancelled := 0, 0
	for _, o := range orders {
		if !w.Contains(o.OccurredAt()) {
			continue
		}
		total++
		if StatusMatches(o.Status, "cancel") {
			cancelled++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cancelled) / float64(total)
}

// RefundRateDelta compares cancel ratios as percentages. Delta is in
// percentage points; a falling rate counts as an improvement.
func RefundRateDelta(orders []domain.Order, current Window, previous Window) domain.RefundRate {
	cur := CancelRatio(orders, current) * 100
	prev := CancelRatio(orders, previous) * 100
	delta := cur - prev
	return domain.RefundRate{
		Current:  cur,
		Previous: prev,
		Delta:    delta,
		Improved: delta <= 0,
	}
}
