package inventory

import (
	"github.com/google/uuid"
)

// Aggregate merges adjustment lists into one, summing quantities per item.
// Ordering follows the first occurrence of each item across the inputs.
// Entries that cancel out to zero are kept so callers can still see the item
// was touched.
func Aggregate(lists ...[]Adjustment) []Adjustment {
	acc := newAccumulator()
	for _, list := range lists {
		for _, adj := range list {
			acc.add(adj.ItemID, adj.Quantity)
		}
	}
	return acc.ordered()
}

// Scale multiplies every quantity by factor.
func Scale(adjustments []Adjustment, factor int) []Adjustment {
	out := make([]Adjustment, 0, len(adjustments))
	for _, adj := range adjustments {
		out = append(out, Adjustment{ItemID: adj.ItemID, Quantity: adj.Quantity * factor})
	}
	return out
}

// Invert flips the sign of every quantity, turning consumption into
// restoration and vice versa.
func Invert(adjustments []Adjustment) []Adjustment {
	return Scale(adjustments, -1)
}

// Apply returns a copy of stocks with the adjustments applied. Items absent
// from stocks start at zero. Results are not clamped; callers that need a
// floor check the outcome themselves.
func Apply(stocks map[uuid.UUID]int, adjustments []Adjustment) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(stocks))
	for id, stock := range stocks {
		out[id] = stock
	}
	for _, adj := range adjustments {
		out[adj.ItemID] += adj.Quantity
	}
	return out
}
