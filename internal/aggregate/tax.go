package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"invoiceflow/backend/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// RateResolver supplies an item's catalogue GST rate when the order line
// carries none.
type RateResolver interface {
	GSTRate(itemID int64) (int, bool)
}

// ItemCatalog indexes items by ID. It resolves rates, names and categories.
type ItemCatalog map[int64]domain.Item

func NewItemCatalog(items []domain.Item) ItemCatalog {
	catalog := make(ItemCatalog, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}
	return catalog
}

func (c ItemCatalog) GSTRate(itemID int64) (int, bool) {
	item, ok := c[itemID]
	if !ok || item.GSTRate == nil {
		return 0, false
	}
	return *item.GSTRate, true
}

// Name returns the display name of an item, falling back to its SKU.
func (c ItemCatalog) Name(itemID int64) (string, bool) {
	item, ok := c[itemID]
	if !ok {
		return "", false
	}
	if name := strings.TrimSpace(item.Name); name != "" {
		return name, true
	}
	if sku := strings.TrimSpace(item.SKU); sku != "" {
		return sku, true
	}
	return "", false
}

func (c ItemCatalog) Category(itemID int64) string {
	return strings.TrimSpace(c[itemID].Category)
}

// StateCode is the two-digit state prefix of a GSTIN, "" when the GSTIN does
// not start with two digits.
func StateCode(gstin string) string {
	s := strings.TrimSpace(gstin)
	if len(s) < 2 {
		return ""
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return ""
	}
	return s[:2]
}

func resolveRate(line domain.OrderLine, rates RateResolver) *int {
	if line.GST != nil {
		r := *line.GST
		return &r
	}
	if rates == nil {
		return nil
	}
	if r, ok := rates.GSTRate(line.ItemID); ok {
		return &r
	}
	return nil
}

// ComputeTax builds the GST breakup of one order. Lines with no resolvable
// rate are taxable but contribute no tax. The supply is inter-state only when
// both GSTINs yield a state code and the codes differ; otherwise each rate
// splits evenly into CGST and SGST.
func ComputeTax(order domain.Order, rates RateResolver, sellerGSTIN string, customerGSTIN string) domain.TaxBreakdown {
	out := domain.TaxBreakdown{
		Lines:         make([]domain.TaxLine, 0, len(order.Items)),
		Tiers:         []domain.TaxTier{},
		Components:    []domain.TaxComponent{},
		Subtotal:      decimal.Zero,
		TaxTotal:      decimal.Zero,
		SellerState:   StateCode(sellerGSTIN),
		CustomerState: StateCode(customerGSTIN),
	}
	out.InterState = out.SellerState != "" && out.CustomerState != "" && out.SellerState != out.CustomerState

	tiers := map[int]*domain.TaxTier{}
	for _, line := range order.Items {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		taxable := line.Price.Decimal.Mul(decimal.NewFromInt(int64(qty)))
		row := domain.TaxLine{
			ItemID:   line.ItemID,
			Name:     line.Name,
			SKU:      line.SKU,
			Quantity: qty,
			Price:    line.Price.Decimal,
			Taxable:  taxable,
			Tax:      decimal.Zero,
		}
		out.Subtotal = out.Subtotal.Add(taxable)

		// Negative rates are treated as unresolved.
		if rate := resolveRate(line, rates); rate != nil && *rate >= 0 {
			row.Rate = rate
			row.Tax = taxable.Mul(decimal.NewFromInt(int64(*rate))).Div(hundred)
			tier, ok := tiers[*rate]
			if !ok {
				tier = &domain.TaxTier{Rate: *rate, Taxable: decimal.Zero, Tax: decimal.Zero}
				tiers[*rate] = tier
			}
			tier.Taxable = tier.Taxable.Add(taxable)
			tier.Tax = tier.Tax.Add(row.Tax)
			out.TaxTotal = out.TaxTotal.Add(row.Tax)
		}
		out.Lines = append(out.Lines, row)
	}

	keys := make([]int, 0, len(tiers))
	for rate := range tiers {
		keys = append(keys, rate)
	}
	sort.Ints(keys)
	for _, rate := range keys {
		tier := *tiers[rate]
		out.Tiers = append(out.Tiers, tier)
		if rate <= 0 {
			continue
		}
		rateDec := decimal.NewFromInt(int64(rate))
		if out.InterState {
			out.Components = append(out.Components, domain.TaxComponent{
				Label:  "IGST",
				Rate:   rateDec,
				Amount: tier.Tax,
			})
			continue
		}
		half := tier.Tax.Div(two)
		halfRate := rateDec.Div(two)
		out.Components = append(out.Components,
			domain.TaxComponent{Label: "CGST", Rate: halfRate, Amount: half},
			domain.TaxComponent{Label: "SGST", Rate: halfRate, Amount: tier.Tax.Sub(half)},
		)
	}

	if out.TaxTotal.IsPositive() {
		out.TaxComputed = true
		out.Total = out.Subtotal.Add(out.TaxTotal)
		return out
	}

	// No line-level tax: the order total from the backend is authoritative and
	// any excess over the subtotal is reported as tax.
	out.Total = order.Total.Decimal
	if out.Total.IsZero() {
		out.Total = out.Subtotal
	}
	implied := out.Total.Sub(out.Subtotal)
	if implied.IsNegative() {
		implied = decimal.Zero
	}
	out.TaxTotal = implied
	return out
}
