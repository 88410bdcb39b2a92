package inventory

import (
	"fmt"

	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
)

// Adjustment is a signed stock delta for one item. Positive quantities add
// stock, negative quantities consume it.
type Adjustment struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// Flatten resolves a BOM tree down to its leaf items, multiplying quantities
// along each path. The result is ordered by first depth-first occurrence of
// each leaf, with repeated leaves summed into a single entry.
//
// A cycle in the tree or an unresolved component reference means the stored
// data is corrupt and yields a consistency error rather than a partial
// result.
func Flatten(root *ItemNode) ([]Adjustment, error) {
	if root == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "cannot flatten a missing item")
	}
	acc := newAccumulator()
	if err := flattenInto(root, 1, map[uuid.UUID]bool{}, acc); err != nil {
		return nil, err
	}
	return acc.ordered(), nil
}

func flattenInto(node *ItemNode, multiplier int, visiting map[uuid.UUID]bool, acc *accumulator) error {
	if !node.IsComplex() {
		acc.add(node.ID, multiplier)
		return nil
	}
	if visiting[node.ID] {
		return pkgerrors.New(pkgerrors.CodeConsistency,
			fmt.Sprintf("component cycle detected at item %s (%s)", node.ID, node.Name),
		).WithDetails(map[string]any{"item_id": node.ID})
	}
	visiting[node.ID] = true
	defer delete(visiting, node.ID)

	for _, comp := range node.Components {
		if !comp.Ref.Resolved() {
			return pkgerrors.New(pkgerrors.CodeConsistency,
				fmt.Sprintf("item %s references missing component %s", node.ID, comp.Ref.ItemID()),
			).WithDetails(map[string]any{"item_id": node.ID, "component_id": comp.Ref.ItemID()})
		}
		if comp.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeConsistency,
				fmt.Sprintf("item %s carries a non-positive component quantity", node.ID))
		}
		if err := flattenInto(comp.Ref.Node(), multiplier*comp.Quantity, visiting, acc); err != nil {
			return err
		}
	}
	return nil
}

// accumulator sums quantities per item while remembering first-seen order.
type accumulator struct {
	order  []uuid.UUID
	totals map[uuid.UUID]int
}

func newAccumulator() *accumulator {
	return &accumulator{totals: map[uuid.UUID]int{}}
}

func (a *accumulator) add(id uuid.UUID, quantity int) {
	if _, seen := a.totals[id]; !seen {
		a.order = append(a.order, id)
	}
	a.totals[id] += quantity
}

func (a *accumulator) ordered() []Adjustment {
	out := make([]Adjustment, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, Adjustment{ItemID: id, Quantity: a.totals[id]})
	}
	return out
}
