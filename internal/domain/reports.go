package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bucket struct {
	Date  time.Time `json:"date"`
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

type PeriodDelta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Percent  float64 `json:"percent"`
}

type TaxLine struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Quantity int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Taxable  decimal.Decimal `json:"taxable"`
	Rate     *int            `json:"gst_rate,omitempty"`
	Tax      decimal.Decimal `json:"tax"`
}

type TaxTier struct {
	Rate    int             `json:"rate"`
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
}

// TaxComponent is one printed breakup row, e.g. "CGST 9%".
type TaxComponent struct {
	Label  string          `json:"label"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type TaxBreakdown struct {
	Lines         []TaxLine       `json:"lines"`
	Tiers         []TaxTier       `json:"tiers"`
	Components    []TaxComponent  `json:"components"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	TaxComputed   bool            `json:"tax_computed"`
	InterState    bool            `json:"inter_state"`
	SellerState   string          `json:"seller_state,omitempty"`
	CustomerState string          `json:"customer_state,omitempty"`
}

type RankedItem struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
	Percent  int    `json:"percent"`
}

type CategoryGrowth struct {
	Category string  `json:"category"`
	Current  int     `json:"current"`
	Previous int     `json:"previous"`
	Percent  float64 `json:"percent"`
}

type Insight struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	InsightAutomated = "Automated Insight"
	InsightAlert     = "Alert"
	InsightNote      = "Note"
)

type RecentOrder struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Items        []string  `json:"items"`
	Total        Amount    `json:"total"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"created_at"`
}

type DashboardResponse struct {
	GeneratedAt      string        `json:"generated_at"`
	TotalSales       float64       `json:"total_sales"`
	TotalCustomers   int           `json:"total_customers"`
	OrdersCompleted  int           `json:"orders_completed"`
	OrdersCancelled  int           `json:"orders_cancelled"`
	SalesDelta       PeriodDelta   `json:"sales_delta"`
	CustomersDelta   PeriodDelta   `json:"customers_delta"`
	CompletedDelta   PeriodDelta   `json:"completed_delta"`
	CancelledDelta   PeriodDelta   `json:"cancelled_delta"`
	TopSelling       []RankedItem  `json:"top_selling"`
	RecentOrders     []RecentOrder `json:"recent_orders"`
	LowStockItems    int           `json:"low_stock_items"`
	DefaultChartSpan string        `json:"default_chart_span"`
}

type SalesChartResponse struct {
	Range  string      `json:"range"`
	Label  string      `json:"label"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Series []Bucket    `json:"series"`
	Total  float64     `json:"total"`
	Delta  PeriodDelta `json:"delta"`
}

type MonthlyPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type TopPerformer struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
}

type RefundRate struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
	Improved bool    `json:"improved"`
}

type ReportsResponse struct {
	GeneratedAt    string         `json:"generated_at"`
	CurrentFrom    string         `json:"current_from"`
	PreviousFrom   string         `json:"previous_from"`
	PreviousTo     string         `json:"previous_to"`
	SalesGrowth    PeriodDelta    `json:"sales_growth"`
	RefundRate     RefundRate     `json:"refund_rate"`
	TopPerformer   TopPerformer   `json:"top_performer"`
	NewCustomers   PeriodDelta    `json:"new_customers"`
	MonthlyRevenue []MonthlyPoint `json:"monthly_revenue"`
	TopItems       []RankedItem   `json:"top_items"`
	Insights       []Insight      `json:"insights"`
}

type ReceiptResponse struct {
	OrderID   int64         `json:"order_id"`
	Date      Timestamp     `json:"date"`
	Customer  string        `json:"customer"`
	Store     StoreSettings `json:"store"`
	ShowTax   bool          `json:"show_tax"`
	Breakdown TaxBreakdown  `json:"breakdown"`
}

type LowStockResponse struct {
	Items []Item `json:"items"`
}
