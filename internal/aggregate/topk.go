package aggregate

import (
	"fmt"
	"math"
	"sort"

	"invoiceflow/backend/internal/domain"
)

// NameResolver maps an item ID to a display name.
type NameResolver func(itemID int64) (string, bool)

type itemTally struct {
	id  int64
	qty int
}

// tallyItems sums quantities per item ID in first-seen order. Lines without
// an item ID are skipped.
func tallyItems(orders []domain.Order) ([]itemTally, int) {
	index := map[int64]int{}
	tallies := []itemTally{}
	total := 0
	for _, o := range orders {
		for _, line := range o.Items {
			if line.ItemID == 0 {
				continue
			}
			qty := line.Quantity
			if qty < 1 {
				qty = 1
			}
			pos, ok := index[line.ItemID]
			if !ok {
				pos = len(tallies)
				index[line.ItemID] = pos
				tallies = append(tallies, itemTally{id: line.ItemID})
			}
			tallies[pos].qty += qty
			total += qty
		}
	}
	// Stable: ties keep first-seen order.
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].qty > tallies[j].qty
	})
	return tallies, total
}

func displayName(itemID int64, names NameResolver) string {
	if names != nil {
		if name, ok := names(itemID); ok && name != "" {
			return name
		}
	}
	return fmt.Sprintf("Item %d", itemID)
}

// TopItems ranks items by total quantity sold and keeps the first k. Each
// entry's percent is its share of the quantity across all items, rounded to a
// whole number.
func TopItems(orders []domain.Order, k int, names NameResolver) []domain.RankedItem {
	if k <= 0 {
		return []domain.RankedItem{}
	}
	tallies, total := tallyItems(orders)
	if len(tallies) > k {
		tallies = tallies[:k]
	}

	out := make([]domain.RankedItem, 0, len(tallies))
	sum := 0
	for _, t := range tallies {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(t.qty) / float64(total) * 100))
		}
		sum += pct
		out = append(out, domain.RankedItem{
			ItemID:   t.id,
			Name:     displayName(t.id, names),
			Quantity: t.qty,
			Percent:  pct,
		})
	}

	// Half-up rounding of many equal shares can overshoot; take the excess
	// back from the lowest-ranked entries.
	for i := len(out) - 1; sum > 100 && i >= 0; i-- {
		if out[i].Percent > 0 {
			out[i].Percent--
			sum--
		}
	}
	return out
}

// TopPerformer is the single best-selling item, with "—" as the name when
// nothing sold.
func TopPerformer(orders []domain.Order, names NameResolver) domain.TopPerformer {
	top := TopItems(orders, 1, names)
	if len(top) == 0 {
		return domain.TopPerformer{Name: "—"}
	}
	return domain.TopPerformer{Name: top[0].Name, Quantity: top[0].Quantity}
}

// CategoryGrowth finds the category whose sold quantity grew the most, in
// percent, between previous and current. Only strictly positive growth
// qualifies. Items without a category count as "Uncategorized".
func CategoryGrowth(orders []domain.Order, catalog ItemCatalog, current Window, previous Window) (domain.CategoryGrowth, bool) {
	order := []string{}
	seen := map[string]bool{}
	cur := map[string]int{}
	prev := map[string]int{}
	for _, o := range orders {
		at := o.OccurredAt()
		inCur, inPrev := current.Contains(at), previous.Contains(at)
		if !inCur && !inPrev {
			continue
		}
		for _, line := range o.Items {
			category := catalog.Category(line.ItemID)
			if category == "" {
				category = "Uncategorized"
			}
			qty := line.Quantity
			if qty < 1 {
				qty = 1
			}
			if !seen[category] {
				seen[category] = true
				order = append(order, category)
			}
			if inCur {
				cur[category] += qty
			}
			if inPrev {
				prev[category] += qty
			}
		}
	}

	best := domain.CategoryGrowth{}
	found := false
	for _, category := range order {
		pct := Percent(float64(cur[category]), float64(prev[category]))
		if pct > best.Percent {
			found = true
			best = domain.CategoryGrowth{
				Category: category,
				Current:  cur[category],
				Previous: prev[category],
				Percent:  pct,
			}
		}
	}
	return best, found
}
