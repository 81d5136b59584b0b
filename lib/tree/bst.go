package tree

import (
	"sync/atomic"

	"github.com/benz9527/xbst/lib/infra"
)

type bstNode[K infra.OrderedKey] struct {
	left   *bstNode[K]
	right  *bstNode[K]
	key    K
	x      int
	y      int
	active atomic.Bool
}

func (node *bstNode[K]) Key() K {
	return node.key
}

func (node *bstNode[K]) Left() BSTNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bstNode[K]) Right() BSTNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *bstNode[K]) X() int {
	return node.x
}

func (node *bstNode[K]) Y() int {
	return node.y
}

func (node *bstNode[K]) IsActive() bool {
	if node == nil {
		return false
	}
	return node.active.Load()
}

func (node *bstNode[K]) SetActive(active bool) {
	if node == nil {
		return
	}
	node.active.Store(active)
}

func (node *bstNode[K]) isLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

func (node *bstNode[K]) minimum() *bstNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

type bsTree[K infra.OrderedKey] struct {
	root       *bstNode[K]
	compare    infra.OrderedKeyComparator[K]
	count      int64
	areaWidth  int
	areaHeight int
}

func (tree *bsTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *bsTree[K]) Root() BSTNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// Insert never rebalances. Equal keys descend to the left, so duplicates
// end up in the left subtree of their first occurrence.
func (tree *bsTree[K]) Insert(key K) {
	z := &bstNode[K]{key: key}
	if tree.root == nil {
		tree.root = z
		atomic.AddInt64(&tree.count, 1)
		return
	}

	var x, y *bstNode[K] = tree.root, nil
	for x != nil {
		y = x
		if /* less or equal */ tree.compare(key, x.key) <= 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	if tree.compare(key, y.key) <= 0 {
		y.left = z
	} else {
		y.right = z
	}
	atomic.AddInt64(&tree.count, 1)
}

func (tree *bsTree[K]) search(key K) *bstNode[K] {
	for aux := tree.root; aux != nil; {
		res := tree.compare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *bsTree[K]) Search(key K) (BSTNode[K], error) {
	node := tree.search(key)
	if node == nil {
		return nil, ErrBSTElementNotFound
	}
	return node, nil
}

/*
r1: Current node X is a leaf, splice it out directly.

r2: Current node X has exactly one child C, promote C into X's place.

	  |              |
	  X              C
	 /      ====>   / \
	C             ..   ..

r3: Current node X has left and right children. Copy the key of the
succ S (the leftmost node of X's right subtree) into X, then remove S
from the right subtree. S has no left child, so it falls into r1 or r2.
The pred is never borrowed.

	  |                    |
	  X                    S
	 / \                  / \
	L   R   copy(S, X)   L   R
	   /    =========>      /
	  S                   Sr
	   \
	    Sr
*/
func (tree *bsTree[K]) removeNode(node *bstNode[K], key K) *bstNode[K] {
	if node == nil {
		return nil
	}

	res := tree.compare(key, node.key)
	if res < 0 {
		node.left = tree.removeNode(node.left, key)
		return node
	} else if res > 0 {
		node.right = tree.removeNode(node.right, key)
		return node
	}

	if /* r1 */ node.isLeaf() {
		return nil
	}
	if /* r2 */ node.left == nil {
		replace := node.right
		node.right = nil
		return replace
	} else if node.right == nil {
		replace := node.left
		node.left = nil
		return replace
	}

	/* r3 */
	succ := node.right.minimum()
	node.key = succ.key
	node.right = removeMinimum(node.right)
	return node
}

// Splices out the leftmost node of the subtree and returns the new subtree root.
func removeMinimum[K infra.OrderedKey](node *bstNode[K]) *bstNode[K] {
	if node.left == nil {
		replace := node.right
		node.right = nil
		return replace
	}
	node.left = removeMinimum[K](node.left)
	return node
}

func (tree *bsTree[K]) Remove(key K) error {
	if _, err := tree.Search(key); err != nil {
		return err
	}
	tree.root = tree.removeNode(tree.root, key)
	atomic.AddInt64(&tree.count, -1)
	return nil
}

// Height is the number of edges on the longest root-to-leaf path.
// An empty tree is -1, a single node tree is 0.
func (tree *bsTree[K]) Height() int {
	return height[K](tree.root)
}

func height[K infra.OrderedKey](node *bstNode[K]) int {
	if node == nil {
		return -1
	}
	return 1 + max(height[K](node.left), height[K](node.right))
}

// Inorder traversal to implement the DFS.
func (tree *bsTree[K]) Foreach(action func(idx int64, key K) bool) {
	size := tree.Len()
	aux := tree.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*bstNode[K], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

type walkFrame[K infra.OrderedKey] struct {
	node  *bstNode[K]
	depth int
}

// Preorder traversal, the right child is pushed first so the left
// subtree is visited first.
func (tree *bsTree[K]) Walk(action func(depth int, node BSTNode[K]) bool) {
	if tree.root == nil {
		return
	}

	stack := make([]walkFrame[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, walkFrame[K]{node: tree.root})

	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		if !action(frame.depth, frame.node) {
			return
		}
		if frame.node.right != nil {
			stack = append(stack, walkFrame[K]{node: frame.node.right, depth: frame.depth + 1})
		}
		if frame.node.left != nil {
			stack = append(stack, walkFrame[K]{node: frame.node.left, depth: frame.depth + 1})
		}
	}
}

func (tree *bsTree[K]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}

	stack := make([]*bstNode[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
		aux.active.Store(false)
		atomic.AddInt64(&tree.count, -1)
	}
}

type BSTOpt[K infra.OrderedKey] func(*bsTree[K])

func WithBSTDesc[K infra.OrderedKey]() BSTOpt[K] {
	return func(tree *bsTree[K]) {
		tree.compare = infra.DescOrderedKeyComparator[K]()
	}
}

func WithBSTComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) BSTOpt[K] {
	return func(tree *bsTree[K]) {
		if cmp != nil {
			tree.compare = cmp
		}
	}
}

// NewBST creates an empty tree laid out inside a width x height display area.
func NewBST[K infra.OrderedKey](width, height int, opts ...BSTOpt[K]) BSTree[K] {
	tree := &bsTree[K]{
		compare:    infra.AscOrderedKeyComparator[K](),
		areaWidth:  width,
		areaHeight: height,
	}

	for _, o := range opts {
		o(tree)
	}
	return tree
}
