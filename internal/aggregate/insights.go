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
	refundSpikeLookbackDays = 14
	refundSpikeThreshold    = 0.02
)

// InsightInput is everything the insight rules look at.
type InsightInput struct {
	Orders   []domain.Order
	Items    []domain.Item
	Bucketer Bucketer
	Now      time.Time
	Notes    []string
}

// Insights derives the automated report annotations, in a fixed order:
// week-over-week order volume, fastest growing category, the oldest refund
// spike of the last two weeks, low stock, then the caller's notes.
func Insights(in InsightInput) []domain.Insight {
	b := in.Bucketer
	today := b.StartOfDay(in.Now)
	week := Window{Start: b.DaysBack(in.Now, 7), End: today}
	prevWeek := Window{Start: b.DaysBack(in.Now, 14), End: week.Start}

	out := []domain.Insight{}

	orders := CompareOrders(in.Orders, OrderCount, week, prevWeek)
	if orders.Current > 0 || orders.Previous > 0 {
		direction := "up"
		if orders.Percent < 0 {
			direction = "down"
		}
		out = append(out, domain.Insight{
			ID:   "orders-wow",
			Type: domain.InsightAutomated,
			Text: fmt.Sprintf("Orders are %s %.1f%% WoW.", direction, math.Abs(orders.Percent)),
		})
	}

	if growth, ok := CategoryGrowth(in.Orders, NewItemCatalog(in.Items), week, prevWeek); ok {
		out = append(out, domain.Insight{
			ID:   "category-growth",
			Type: domain.InsightAutomated,
			Text: fmt.Sprintf("%s category grew the most WoW (+%.1f%%).", growth.Category, growth.Percent),
		})
	}

	for i := refundSpikeLookbackDays; i >= 1; i-- {
		day := Window{Start: b.DaysBack(in.Now, i), End: b.DaysBack(in.Now, i-1)}
		if len(FilterOrders(in.Orders, day)) == 0 {
			continue
		}
		ratio := CancelRatio(in.Orders, day)
		if ratio > refundSpikeThreshold {
			pct := math.Round(ratio*1000) / 10
			out = append(out, domain.Insight{
				ID:   "refund-spike",
				Type: domain.InsightAlert,
				Text: fmt.Sprintf("Refund rate %s%% on %s.", strconv.FormatFloat(pct, 'f', -1, 64), day.Start.Format("2/1/2006")),
			})
			break
		}
	}

	low := 0
	for _, item := range in.Items {
		if item.LowOnStock() {
			low++
		}
	}
	if low > 0 {
		out = append(out, domain.Insight{
			ID:   "low-stock",
			Type: domain.InsightNote,
			Text: fmt.Sprintf("%d item(s) at or below reorder point.", low),
		})
	}

	n := 0
	for _, note := range in.Notes {
		text := strings.TrimSpace(note)
		if text == "" {
			continue
		}
		n++
		out = append(out, domain.Insight{
			ID:   fmt.Sprintf("note-%d", n),
			Type: domain.InsightNote,
			Text: text,
		})
	}
	return out
}
