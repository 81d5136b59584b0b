package tree

import "github.com/benz9527/xbst/lib/infra"

type BSTErr string

const (
	ErrBSTElementNotFound BSTErr = "[bst] element not found"
	ErrBSTNoElements      BSTErr = "[bst] no elements"
)

func (err BSTErr) Error() string {
	return string(err)
}

// BSTNode is the read view of a node handed out to the render collaborator.
// X and Y are valid only after both coordinate passes ran against the
// current tree shape. The active flag is presentation-only; it may be
// toggled from another goroutine while the tree is walked for rendering,
// but never while the tree is structurally mutated.
type BSTNode[K infra.OrderedKey] interface {
	Key() K
	Left() BSTNode[K]
	Right() BSTNode[K]
	X() int
	Y() int
	IsActive() bool
	SetActive(active bool)
}

// BSTree is an unbalanced binary search tree. Equal keys are routed to the
// left subtree. It is not safe for concurrent mutation.
type BSTree[K infra.OrderedKey] interface {
	Len() int64
	Root() BSTNode[K]
	Insert(key K)
	Search(key K) (BSTNode[K], error)
	Remove(key K) error
	Height() int

	SetDisplayArea(width, height int)
	DisplayArea() (width, height int)
	AssignRowCoordinates() error
	AssignColumnCoordinates()

	// Foreach is the in-order (sorted) traversal.
	Foreach(action func(idx int64, key K) bool)
	// Walk is the pre-order traversal used for drawing, parents come
	// before their children.
	Walk(action func(depth int, node BSTNode[K]) bool)
	Release()
}
