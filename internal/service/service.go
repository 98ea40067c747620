package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"invoiceflow/backend/internal/aggregate"
	"invoiceflow/backend/internal/cache"
	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/store"
)

const (
	dashboardTopItems    = 3
	dashboardRecentLimit = 6
	reportTopItems       = 5
	reportMonths         = 12
	quarterDays          = 90
	salesWindowDays      = 30
	statusWindowDays     = 7
	defaultChartRange    = "7"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	Location    *time.Location
	CacheTTL    time.Duration
	SellerGSTIN string
}

type Service struct {
	repo        store.Repository
	cache       cache.ReportCache
	cacheTTL    time.Duration
	bucketer    aggregate.Bucketer
	sellerGSTIN string
}

func New(repo store.Repository, reportCache cache.ReportCache, opts Options) *Service {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	return &Service{
		repo:        repo,
		cache:       reportCache,
		cacheTTL:    opts.CacheTTL,
		bucketer:    aggregate.NewBucketer(opts.Location),
		sellerGSTIN: strings.ToUpper(strings.TrimSpace(opts.SellerGSTIN)),
	}
}

func (s *Service) Location() *time.Location {
	return s.bucketer.Location()
}

// Dashboard computes the KPI cards, top sellers and recent orders.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (domain.DashboardResponse, error) {
	key := "dashboard:" + minuteKey(now)
	return cachedReport(ctx, s, key, func() (domain.DashboardResponse, error) {
		return s.buildDashboard(ctx, now)
	})
}

func (s *Service) buildDashboard(ctx context.Context, now time.Time) (domain.DashboardResponse, error) {
	snapshot, err := store.LoadSnapshot(ctx, s.repo)
	if err != nil {
		return domain.DashboardResponse{}, err
	}
	b := s.bucketer
	catalog := aggregate.NewItemCatalog(snapshot.Items)

	sales := aggregate.Window{Start: b.DaysBack(now, salesWindowDays), End: now}
	prevSales := aggregate.Window{Start: b.DaysBack(now, 2*salesWindowDays), End: sales.Start}
	status := aggregate.Window{Start: b.DaysBack(now, statusWindowDays), End: now}
	prevStatus := aggregate.Window{Start: b.DaysBack(now, 2*statusWindowDays), End: status.Start}

	lowStock := 0
	for _, item := range snapshot.Items {
		if item.LowOnStock() {
			lowStock++
		}
	}

	return domain.DashboardResponse{
		GeneratedAt:      now.UTC().Format(time.RFC3339),
		TotalSales:       aggregate.SumTotals(snapshot.Orders),
		TotalCustomers:   len(snapshot.Customers),
		OrdersCompleted:  aggregate.CountStatus(snapshot.Orders, "complete"),
		OrdersCancelled:  aggregate.CountStatus(snapshot.Orders, "cancel"),
		SalesDelta:       aggregate.CompareOrders(snapshot.Orders, aggregate.CompletedTotal, sales, prevSales),
		CustomersDelta:   aggregate.CompareCustomers(snapshot.Customers, sales, prevSales),
		CompletedDelta:   aggregate.CompareOrders(snapshot.Orders, aggregate.StatusCount("complete"), status, prevStatus),
		CancelledDelta:   aggregate.CompareOrders(snapshot.Orders, aggregate.StatusCount("cancel"), status, prevStatus),
		TopSelling:       aggregate.TopItems(snapshot.Orders, dashboardTopItems, catalog.Name),
		RecentOrders:     recentOrders(snapshot, catalog, dashboardRecentLimit),
		LowStockItems:    lowStock,
		DefaultChartSpan: defaultChartRange,
	}, nil
}

// SalesChart returns daily completed sales for a range key such as "7",
// "today" or "yesterday", with the change against the preceding range.
func (s *Service) SalesChart(ctx context.Context, rangeKey string, now time.Time) (domain.SalesChartResponse, error) {
	rangeKey = strings.ToLower(strings.TrimSpace(rangeKey))
	if rangeKey == "" {
		rangeKey = defaultChartRange
	}
	key := "sales:" + rangeKey + ":" + minuteKey(now)
	return cachedReport(ctx, s, key, func() (domain.SalesChartResponse, error) {
		orders, err := s.repo.ListOrders(ctx)
		if err != nil {
			return domain.SalesChartResponse{}, err
		}
		b := s.bucketer
		from, to, label := aggregate.RangeFromKey(rangeKey, now, b)
		series := aggregate.SalesSeries(orders, b, from, to)
		current := b.DayWindow(from, to)

		return domain.SalesChartResponse{
			Range:  rangeKey,
			Label:  label,
			From:   b.DayKey(from),
			To:     b.DayKey(to),
			Series: series,
			Total:  aggregate.SeriesTotal(series),
			Delta:  aggregate.CompareOrders(orders, aggregate.CompletedTotal, current, aggregate.PrecedingWindow(current)),
		}, nil
	})
}

// Reports compares the last 90 full days against the 90 before them and
// derives the insight cards. Notes are appended verbatim as note insights.
func (s *Service) Reports(ctx context.Context, now time.Time, notes []string) (domain.ReportsResponse, error) {
	key := "reports:" + minuteKey(now) + ":" + notesHash(notes)
	return cachedReport(ctx, s, key, func() (domain.ReportsResponse, error) {
		return s.buildReports(ctx, now, notes)
	})
}

func (s *Service) buildReports(ctx context.Context, now time.Time, notes []string) (domain.ReportsResponse, error) {
	snapshot, err := store.LoadSnapshot(ctx, s.repo)
	if err != nil {
		return domain.ReportsResponse{}, err
	}
	b := s.bucketer
	catalog := aggregate.NewItemCatalog(snapshot.Items)

	quarter := aggregate.Window{Start: b.DaysBack(now, quarterDays), End: b.StartOfDay(now)}
	previous := aggregate.Window{Start: b.DaysBack(now, 2*quarterDays), End: quarter.Start}
	inQuarter := aggregate.FilterOrders(snapshot.Orders, quarter)

	return domain.ReportsResponse{
		GeneratedAt:    now.UTC().Format(time.RFC3339),
		CurrentFrom:    b.DayKey(quarter.Start),
		PreviousFrom:   b.DayKey(previous.Start),
		PreviousTo:     b.DayKey(previous.End),
		SalesGrowth:    aggregate.CompareOrders(snapshot.Orders, aggregate.CompletedTotal, quarter, previous),
		RefundRate:     aggregate.RefundRateDelta(snapshot.Orders, quarter, previous),
		TopPerformer:   aggregate.TopPerformer(inQuarter, catalog.Name),
		NewCustomers:   aggregate.CompareCustomers(snapshot.Customers, quarter, previous),
		MonthlyRevenue: aggregate.MonthlyRevenue(snapshot.Orders, b.Location(), now, reportMonths),
		TopItems:       aggregate.TopItems(inQuarter, reportTopItems, catalog.Name),
		Insights: aggregate.Insights(aggregate.InsightInput{
			Orders:   snapshot.Orders,
			Items:    snapshot.Items,
			Bucketer: b,
			Now:      now,
			Notes:    notes,
		}),
	}, nil
}

// Receipt builds the GST breakup of one order. The seller GSTIN comes from
// the configured override, else from store settings.
func (s *Service) Receipt(ctx context.Context, orderID int64) (domain.ReceiptResponse, error) {
	if orderID <= 0 {
		return domain.ReceiptResponse{}, store.ErrInvalidRequest
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	customer := order.Customer
	if customer == nil && order.CustomerID > 0 {
		customer, err = s.repo.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return domain.ReceiptResponse{}, err
			}
			log.Printf("[service] WARN: receipt order=%d references missing customer=%d", order.ID, order.CustomerID)
			customer = nil
		}
	}

	seller := s.sellerGSTIN
	if seller == "" {
		seller = settings.GSTIN
	}
	settings.GSTIN = seller
	customerGSTIN := ""
	customerName := "Walk-in customer"
	if customer != nil {
		customerGSTIN = customer.GSTIN
		customerName = firstNonEmpty(customer.CompanyName, customer.Name, customerName)
	}

	catalog := aggregate.NewItemCatalog(items)
	breakdown := aggregate.ComputeTax(*order, catalog, seller, customerGSTIN)
	for i := range breakdown.Lines {
		line := &breakdown.Lines[i]
		if line.Name == "" {
			if name, ok := catalog.Name(line.ItemID); ok {
				line.Name = name
			} else {
				line.Name = fmt.Sprintf("Item %d", line.ItemID)
			}
		}
		if line.SKU == "" {
			line.SKU = catalog[line.ItemID].SKU
		}
	}

	return domain.ReceiptResponse{
		OrderID:   order.ID,
		Date:      domain.NewTimestamp(order.OccurredAt()),
		Customer:  customerName,
		Store:     settings,
		ShowTax:   settings.ShowTax,
		Breakdown: breakdown,
	}, nil
}

// LowStock lists items at or below their reorder point, most urgent first.
func (s *Service) LowStock(ctx context.Context) (domain.LowStockResponse, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.LowStockResponse{}, err
	}

	low := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.LowOnStock() {
			low = append(low, item)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		gi := low[i].Stock - low[i].ReorderPoint
		gj := low[j].Stock - low[j].ReorderPoint
		if gi != gj {
			return gi < gj
		}
		return low[i].Name < low[j].Name
	})
	return domain.LowStockResponse{Items: low}, nil
}

func cachedReport[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	var cached T
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[service] WARN: report cache read failed key=%s: %v", key, err)
	}
	if err == nil && hit {
		return cached, nil
	}

	fresh, err := build()
	if err != nil {
		return fresh, err
	}
	if err := s.cache.Set(ctx, key, fresh, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: report cache write failed key=%s: %v", key, err)
	}
	return fresh, nil
}

func recentOrders(snapshot domain.Snapshot, catalog aggregate.ItemCatalog, limit int) []domain.RecentOrder {
	customers := make(map[int64]domain.Customer, len(snapshot.Customers))
	for _, c := range snapshot.Customers {
		customers[c.ID] = c
	}

	orders := make([]domain.Order, len(snapshot.Orders))
	copy(orders, snapshot.Orders)
	sort.SliceStable(orders, func(i, j int) bool {
		ti, tj := orders[i].OccurredAt(), orders[j].OccurredAt()
		if ti.IsZero() != tj.IsZero() {
			return !ti.IsZero()
		}
		return ti.After(tj)
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}

	out := make([]domain.RecentOrder, 0, len(orders))
	for _, o := range orders {
		name := "Walk-in customer"
		if o.Customer != nil && o.Customer.Name != "" {
			name = o.Customer.Name
		} else if c, ok := customers[o.CustomerID]; ok && c.Name != "" {
			name = c.Name
		}

		labels := make([]string, 0, len(o.Items))
		for _, line := range o.Items {
			label := line.Name
			if label == "" {
				if resolved, ok := catalog.Name(line.ItemID); ok {
					label = resolved
				} else {
					label = fmt.Sprintf("Item %d", line.ItemID)
				}
			}
			labels = append(labels, fmt.Sprintf("%s × %d", label, line.Quantity))
		}

		out = append(out, domain.RecentOrder{
			ID:           o.ID,
			CustomerName: name,
			Items:        labels,
			Total:        o.Total,
			Status:       o.Status,
			CreatedAt:    domain.NewTimestamp(o.OccurredAt()),
		})
	}
	return out
}

func minuteKey(now time.Time) string {
	return now.UTC().Truncate(time.Minute).Format("200601021504")
}

func notesHash(notes []string) string {
	if len(notes) == 0 {
		return "none"
	}
	hash := sha1.Sum([]byte(strings.Join(notes, "\x1f")))
	return hex.EncodeToString(hash[:8])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
