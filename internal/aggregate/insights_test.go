package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceflow/backend/internal/domain"
)

func TestInsightsOrderAndText(t *testing.T) {
	orders := decodeOrders(t, `[
		{"status":"completed","created_at":"2024-04-02T10:00:00","items":[{"item_id":1,"qty":2}]},
		{"status":"completed","created_at":"2024-04-03T10:00:00","items":[{"item_id":2,"qty":1}]},
		{"status":"canceled","created_at":"2024-04-03T12:00:00","items":[{"item_id":2,"qty":1}]},
		{"status":"completed","created_at":"2024-04-09T10:00:00","items":[{"item_id":1,"qty":6}]},
		{"status":"completed","created_at":"2024-04-10T10:00:00","items":[{"item_id":2,"qty":1}]},
		{"status":"completed","created_at":"2024-04-11T10:00:00","items":[{"item_id":2,"qty":1}]},
		{"status":"completed","created_at":"2024-04-12T10:00:00","items":[{"item_id":2,"qty":1}]}
	]`)
	items := []domain.Item{
		{ID: 1, Name: "Filter Coffee", Category: "Beverages", Stock: 3, ReorderPoint: 5},
		{ID: 2, Name: "Vada", Category: "Snacks", Stock: 40, ReorderPoint: 10},
	}

	insights := Insights(InsightInput{
		Orders:   orders,
		Items:    items,
		Bucketer: NewBucketer(time.UTC),
		Now:      time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC),
		Notes:    []string{"  Diwali stock review pending  ", "   "},
	})

	require.Len(t, insights, 5)
	assert.Equal(t, domain.Insight{ID: "orders-wow", Type: domain.InsightAutomated, Text: "Orders are up 33.3% WoW."}, insights[0])
	assert.Equal(t, domain.Insight{ID: "category-growth", Type: domain.InsightAutomated, Text: "Beverages category grew the most WoW (+200.0%)."}, insights[1])
	assert.Equal(t, domain.Insight{ID: "refund-spike", Type: domain.InsightAlert, Text: "Refund rate 50% on 3/4/2024."}, insights[2])
	assert.Equal(t, domain.Insight{ID: "low-stock", Type: domain.InsightNote, Text: "1 item(s) at or below reorder point."}, insights[3])
	assert.Equal(t, domain.Insight{ID: "note-1", Type: domain.InsightNote, Text: "Diwali stock review pending"}, insights[4])
}

func TestInsightsQuietWeek(t *testing.T) {
	insights := Insights(InsightInput{
		Bucketer: NewBucketer(time.UTC),
		Now:      time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC),
		Items:    []domain.Item{{ID: 1, Stock: 10, ReorderPoint: 2}},
	})

	assert.Empty(t, insights)
}

func TestInsightsOrdersDown(t *testing.T) {
	orders := decodeOrders(t, `[
		{"status":"completed","created_at":"2024-04-02T10:00:00"},
		{"status":"completed","created_at":"2024-04-03T10:00:00"}
	]`)

	insights := Insights(InsightInput{
		Orders:   orders,
		Bucketer: NewBucketer(time.UTC),
		Now:      time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC),
	})

	require.Len(t, insights, 1)
	assert.Equal(t, "Orders are down 100.0% WoW.", insights[0].Text)
}
