package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"invoiceflow/backend/internal/domain"
)

func rate(v int) *int { return &v }

// DemoSnapshot builds a deterministic demo data set whose orders spread over
// the 120 days before now.
func DemoSnapshot(now time.Time) domain.Snapshot {
	now = now.UTC()
	items := []domain.Item{
		{ID: 1, Name: "Filter Coffee 500g", SKU: "IF-BEV-COF-500", Category: "Beverages", Price: domain.AmountFromString("420.00"), Stock: 35, ReorderPoint: 10, GSTRate: rate(5)},
		{ID: 2, Name: "Assam Tea 250g", SKU: "IF-BEV-TEA-250", Category: "Beverages", Price: domain.AmountFromString("180.00"), Stock: 8, ReorderPoint: 10, GSTRate: rate(5)},
		{ID: 3, Name: "Basmati Rice 5kg", SKU: "IF-GRO-RICE-5", Category: "Groceries", Price: domain.AmountFromString("650.00"), Stock: 50, ReorderPoint: 15, GSTRate: rate(5)},
		{ID: 4, Name: "Groundnut Oil 1L", SKU: "IF-GRO-OIL-1", Category: "Groceries", Price: domain.AmountFromString("310.00"), Stock: 12, ReorderPoint: 12, GSTRate: rate(5)},
		{ID: 5, Name: "Steel Tiffin Box", SKU: "IF-KIT-TIF-3", Category: "Kitchenware", Price: domain.AmountFromString("899.00"), Stock: 20, ReorderPoint: 5, GSTRate: rate(12)},
		{ID: 6, Name: "Bluetooth Speaker", SKU: "IF-ELE-SPK-10", Category: "Electronics", Price: domain.AmountFromString("2499.00"), Stock: 6, ReorderPoint: 4, GSTRate: rate(18)},
		{ID: 7, Name: "LED Television 32in", SKU: "IF-ELE-TV-32", Category: "Electronics", Price: domain.AmountFromString("15999.00"), Stock: 3, ReorderPoint: 2, GSTRate: rate(28)},
		{ID: 8, Name: "Fresh Paneer 200g", SKU: "IF-DAI-PAN-200", Category: "Dairy", Price: domain.AmountFromString("90.00"), Stock: 40, ReorderPoint: 10, GSTRate: rate(0)},
	}

	daysAgo := func(days int, hour int) domain.Timestamp {
		d := now.AddDate(0, 0, -days)
		at := time.Date(d.Year(), d.Month(), d.Day(), hour, 15, 0, 0, time.UTC)
		if at.After(now) {
			at = now.Add(-time.Minute)
		}
		return domain.NewTimestamp(at)
	}

	customers := []domain.Customer{
		{ID: 1, Name: "Ananya Rao", Email: "ananya@example.in", Phone: "+91 98450 11223", GSTIN: "29ABCPR1234K1Z3", CompanyName: "Rao Caterers", Address: "Jayanagar, Bengaluru", CreatedAt: daysAgo(110, 9)},
		{ID: 2, Name: "Vikram Desai", Email: "vikram@example.in", Phone: "+91 98200 44556", GSTIN: "27AAFCD5678L1Z9", CompanyName: "Desai Retail LLP", Address: "Andheri, Mumbai", CreatedAt: daysAgo(80, 11)},
		{ID: 3, Name: "Meera Iyer", Email: "meera@example.in", Phone: "+91 94440 77889", Address: "Mylapore, Chennai", CreatedAt: daysAgo(52, 14)},
		{ID: 4, Name: "Farhan Sheikh", Email: "farhan@example.in", Phone: "+91 99000 22334", GSTIN: "33AAGCS9012M1Z4", CompanyName: "Sheikh Traders", Address: "T. Nagar, Chennai", CreatedAt: daysAgo(25, 10)},
		{ID: 5, Name: "Priya Nair", Email: "priya@example.in", Phone: "+91 97400 55667", Address: "Indiranagar, Bengaluru", CreatedAt: daysAgo(12, 16)},
		{ID: 6, Name: "Rohit Kulkarni", Email: "rohit@example.in", Phone: "+91 98860 88990", GSTIN: "29AAHCK3456N1Z7", CompanyName: "Kulkarni Foods", Address: "Whitefield, Bengaluru", CreatedAt: daysAgo(3, 12)},
	}

	orders := make([]domain.Order, 0, 72)
	for i := 0; i < 72; i++ {
		status := domain.StatusCompleted
		switch {
		case i%11 == 0:
			status = domain.StatusCanceled
		case i%7 == 3:
			status = domain.StatusPending
		}

		first := items[i%len(items)]
		lines := []domain.OrderLine{{ItemID: first.ID, Quantity: i%3 + 1, Price: first.Price}}
		if i%2 == 0 {
			second := items[(i*3+1)%len(items)]
			line := domain.OrderLine{ItemID: second.ID, Quantity: 1, Price: second.Price}
			if i%5 == 0 {
				line.GST = rate(*second.GSTRate)
			}
			lines = append(lines, line)
		}

		total := decimal.Zero
		for _, line := range lines {
			itemRate := *items[line.ItemID-1].GSTRate
			gross := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			tax := gross.Mul(decimal.NewFromInt(int64(itemRate))).Div(decimal.NewFromInt(100))
			total = total.Add(gross).Add(tax)
		}

		created := daysAgo(i*5/3, 9+i%9)
		orders = append(orders, domain.Order{
			ID:         int64(1001 + i),
			CustomerID: int64(i%len(customers) + 1),
			Status:     status,
			Total:      domain.Amount{Decimal: total.Round(2)},
			CreatedAt:  created,
			UpdatedAt:  created,
			Items:      lines,
		})
	}

	return domain.Snapshot{
		Orders:    orders,
		Customers: customers,
		Items:     items,
		Settings: domain.StoreSettings{
			CompanyName: "InvoiceFlow Demo Traders",
			Address:     "12 MG Road, Bengaluru, Karnataka 560001",
			Phone:       "+91 80 4000 1234",
			Email:       "accounts@invoiceflow.example",
			GSTIN:       "29AACCI1234F1Z5",
			Currency:    "INR",
			ShowTax:     true,
		},
	}
}
