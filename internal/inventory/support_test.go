package inventory

import (
	"testing"

	"github.com/google/uuid"
)

func TestUnsupportedPropagatesFromDeepLeaf(t *testing.T) {
	discontinued := leaf("legacy chip", 3)
	discontinued.IsSupported = false

	board := complexItem("board", comp(discontinued, 1))
	device := complexItem("device", comp(board, 2), comp(leaf("case", 10), 1))

	if !Unsupported(device) {
		t.Fatal("expected unsupported leaf to propagate to the root")
	}
	if Unsupported(device.Components[1].Ref.Node()) {
		t.Fatal("sibling subtree should stay supported")
	}
}

func TestUnsupportedDirectFlag(t *testing.T) {
	item := leaf("old cable", 0)
	item.IsSupported = false
	if !Unsupported(item) {
		t.Fatal("expected direct flag to count")
	}
}

func TestUnsupportedFullySupportedTree(t *testing.T) {
	root := complexItem("root", comp(leaf("a", 1), 1), comp(leaf("b", 2), 3))
	if Unsupported(root) {
		t.Fatal("expected supported tree")
	}
}

func TestUnsupportedSkipsUnresolvedAndSurvivesCycles(t *testing.T) {
	a := complexItem("a")
	b := complexItem("b", comp(a, 1))
	a.Components = []Component{
		comp(b, 1),
		{Ref: UnresolvedRef(uuid.New()), Quantity: 2},
	}

	// must terminate and answer false: nothing in the loop is flagged
	if Unsupported(a) {
		t.Fatal("expected supported result for cyclic but unflagged tree")
	}

	b.IsSupported = false
	if !Unsupported(a) {
		t.Fatal("expected flag inside cycle to be found")
	}
}

func TestUnsupportedNilNode(t *testing.T) {
	if Unsupported(nil) {
		t.Fatal("nil node is not unsupported")
	}
}
