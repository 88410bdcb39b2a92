package inventory

import (
	"github.com/google/uuid"
)

// Unsupported reports whether the item or anything in its resolved component
// tree is flagged unsupported. A complex item cannot be built once any of its
// descendants is discontinued, so the flag propagates upward.
//
// Unresolved references are skipped and cycles are guarded, so a corrupt tree
// degrades to a plain answer instead of looping.
func Unsupported(root *ItemNode) bool {
	return unsupported(root, map[uuid.UUID]bool{})
}

func unsupported(node *ItemNode, visiting map[uuid.UUID]bool) bool {
	if node == nil || visiting[node.ID] {
		return false
	}
	if !node.IsSupported {
		return true
	}
	visiting[node.ID] = true
	defer delete(visiting, node.ID)

	for _, comp := range node.Components {
		if !comp.Ref.Resolved() {
			continue
		}
		if unsupported(comp.Ref.Node(), visiting) {
			return true
		}
	}
	return false
}
