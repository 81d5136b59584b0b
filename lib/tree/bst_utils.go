package tree

import (
	"fmt"

	"github.com/benz9527/xbst/lib/infra"
)

// bst rule validation utilities.

type boundFrame[K infra.OrderedKey, B any] struct {
	node   BSTNode[K]
	lo, hi B
	hasLo  bool
	hasHi  bool
}

// Preorder traversal to validate that every left subtree key is less than
// or equal to its ancestor key and every right subtree key is not less than it.
// Inserts alone keep right subtree keys strictly greater, but a successor
// promotion may copy a key that still has equal ancestors of the succ in
// the right subtree, so equality is tolerated on that side.
func BSTOrderViolationValidate[K infra.OrderedKey](tree BSTree[K], cmp infra.OrderedKeyComparator[K]) error {
	if tree.Root() == nil {
		return nil
	}
	if cmp == nil {
		cmp = infra.AscOrderedKeyComparator[K]()
	}

	stack := []boundFrame[K, K]{{node: tree.Root()}}
	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		key := frame.node.Key()
		if frame.hasLo && cmp(key, frame.lo) < 0 {
			return fmt.Errorf("bst order violation, key %v is less than %v", key, frame.lo)
		}
		if frame.hasHi && cmp(key, frame.hi) > 0 {
			return fmt.Errorf("bst order violation, key %v is greater than %v", key, frame.hi)
		}
		if l := frame.node.Left(); l != nil {
			stack = append(stack, boundFrame[K, K]{
				node: l, lo: frame.lo, hasLo: frame.hasLo, hi: key, hasHi: true,
			})
		}
		if r := frame.node.Right(); r != nil {
			stack = append(stack, boundFrame[K, K]{
				node: r, lo: key, hasLo: true, hi: frame.hi, hasHi: frame.hasHi,
			})
		}
	}
	return nil
}

// ColumnOverlapValidate checks that every node of a left subtree lies
// strictly left of the subtree parent and every node of a right subtree
// strictly right of it. Run it after AssignColumnCoordinates.
func ColumnOverlapValidate[K infra.OrderedKey](tree BSTree[K]) error {
	if tree.Root() == nil {
		return nil
	}

	stack := []boundFrame[K, int]{{node: tree.Root()}}
	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		x := frame.node.X()
		if (frame.hasLo && x <= frame.lo) || (frame.hasHi && x >= frame.hi) {
			return fmt.Errorf("bst column overlap, key %v at x %d", frame.node.Key(), x)
		}
		if l := frame.node.Left(); l != nil {
			stack = append(stack, boundFrame[K, int]{
				node: l, lo: frame.lo, hasLo: frame.hasLo, hi: x, hasHi: true,
			})
		}
		if r := frame.node.Right(); r != nil {
			stack = append(stack, boundFrame[K, int]{
				node: r, lo: x, hasLo: true, hi: frame.hi, hasHi: frame.hasHi,
			})
		}
	}
	return nil
}

// RowSpacingValidate checks y == spacing/4 + depth*spacing for every node.
// Run it after AssignRowCoordinates.
func RowSpacingValidate[K infra.OrderedKey](tree BSTree[K]) error {
	if tree.Root() == nil {
		return nil
	}

	_, areaHeight := tree.DisplayArea()
	spacing := areaHeight / (tree.Height() + 1)
	var err error
	tree.Walk(func(depth int, node BSTNode[K]) bool {
		if expected := spacing/4 + depth*spacing; node.Y() != expected {
			err = fmt.Errorf("bst row spacing violation, key %v at y %d, expected %d",
				node.Key(), node.Y(), expected)
			return false
		}
		return true
	})
	return err
}
