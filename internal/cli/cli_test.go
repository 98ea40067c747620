package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceflow/backend/internal/domain"
)

func run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return out, root.Execute()
}

var demoFlags = []string{"--demo", "--now", "2024-03-20T12:00:00", "--timezone", "UTC"}

func TestDashboardFromDemoData(t *testing.T) {
	out, err := run(t, append([]string{"dashboard"}, demoFlags...)...)
	require.NoError(t, err)

	var resp domain.DashboardResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 6, resp.TotalCustomers)
	assert.Len(t, resp.RecentOrders, 6)
	assert.Equal(t, 2, resp.LowStockItems)
}

func TestSalesRange(t *testing.T) {
	out, err := run(t, append([]string{"sales", "--range", "30"}, demoFlags...)...)
	require.NoError(t, err)

	var resp domain.SalesChartResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Len(t, resp.Series, 30)
	assert.Equal(t, "2024-03-20", resp.To)
}

func TestReportsCarryNotes(t *testing.T) {
	out, err := run(t, append([]string{"reports", "--note", "first", "--note", "second"}, demoFlags...)...)
	require.NoError(t, err)

	var resp domain.ReportsResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.GreaterOrEqual(t, len(resp.Insights), 2)
	n := len(resp.Insights)
	assert.Equal(t, "note-1", resp.Insights[n-2].ID)
	assert.Equal(t, "second", resp.Insights[n-1].Text)
	assert.Len(t, resp.MonthlyRevenue, 12)
}

func TestReceiptFromSnapshotFile(t *testing.T) {
	snapshot := domain.Snapshot{
		Items: []domain.Item{{ID: 1, Name: "Speaker", Price: domain.AmountFromString("100"), GSTRate: func() *int { r := 18; return &r }()}},
		Orders: []domain.Order{{
			ID:     42,
			Status: "completed",
			Total:  domain.AmountFromString("118"),
			Items:  []domain.OrderLine{{ItemID: 1, Quantity: 1, Price: domain.AmountFromString("100")}},
		}},
		Settings: domain.StoreSettings{GSTIN: "29AACCI1234F1Z5", ShowTax: true},
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	out, err := run(t, "receipt", "42", "--snapshot", path, "--timezone", "UTC")
	require.NoError(t, err)

	var receipt domain.ReceiptResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &receipt))
	assert.Equal(t, int64(42), receipt.OrderID)
	assert.Equal(t, "Walk-in customer", receipt.Customer)
	assert.Equal(t, "18", receipt.Breakdown.TaxTotal.String())
	assert.True(t, receipt.Breakdown.TaxComputed)
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "dashboard", "--snapshot", "")
	assert.ErrorContains(t, err, "no data source")

	_, err = run(t, append([]string{"receipt", "abc"}, demoFlags...)...)
	assert.ErrorContains(t, err, "positive integer")

	_, err = run(t, append([]string{"receipt", "999999"}, demoFlags...)...)
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "dashboard", "--demo", "--timezone", "Mars/Olympus")
	assert.ErrorContains(t, err, "unknown timezone")

	_, err = run(t, "dashboard", "--demo", "--now", "not a time")
	assert.ErrorContains(t, err, "cannot parse --now")
}
