package inventory

import (
	"github.com/google/uuid"
)

// ItemNode is one item in a resolved bill-of-materials tree. A node with no
// components is a leaf; everything else is a complex item that must be
// flattened before any stock math.
type ItemNode struct {
	ID                 uuid.UUID
	Name               string
	SKU                string
	Stock              int
	MinStock           int
	Vendor             string
	IsSupported        bool
	IsAssembledProduct bool
	Components         []Component
}

// IsComplex reports whether the node carries a bill of materials.
func (n *ItemNode) IsComplex() bool {
	return n != nil && len(n.Components) > 0
}

// Component is a single BOM line: a child reference plus a positive
// multiplier.
type Component struct {
	Ref      ComponentRef
	Quantity int
}

// ComponentRef points at a child item either through a resolved node or, when
// the child row was missing at resolution time, through its bare ID. Exactly
// one side is set.
type ComponentRef struct {
	node   *ItemNode
	itemID uuid.UUID
}

// ResolvedRef builds a reference to an in-memory node.
func ResolvedRef(node *ItemNode) ComponentRef {
	return ComponentRef{node: node}
}

// UnresolvedRef builds a dangling reference carrying only the child ID.
func UnresolvedRef(id uuid.UUID) ComponentRef {
	return ComponentRef{itemID: id}
}

// Resolved reports whether the reference carries a node.
func (r ComponentRef) Resolved() bool {
	return r.node != nil
}

// Node returns the referenced node, or nil for an unresolved reference.
func (r ComponentRef) Node() *ItemNode {
	return r.node
}

// ItemID returns the referenced item's ID regardless of resolution state.
func (r ComponentRef) ItemID() uuid.UUID {
	if r.node != nil {
		return r.node.ID
	}
	return r.itemID
}
