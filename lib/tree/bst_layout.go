package tree

import "github.com/benz9527/xbst/lib/infra"

// SetDisplayArea takes effect on the next layout pass only.
func (tree *bsTree[K]) SetDisplayArea(width, height int) {
	tree.areaWidth = width
	tree.areaHeight = height
}

func (tree *bsTree[K]) DisplayArea() (width, height int) {
	return tree.areaWidth, tree.areaHeight
}

type rowFrame[K infra.OrderedKey] struct {
	node *bstNode[K]
	y    int
}

/*
Rows are evenly spaced across the area height regardless of the tree
shape. The root keeps a quarter of one row spacing as top margin.

	spacing = areaHeight / (height + 1)
	root.y  = spacing / 4
	child.y = parent.y + spacing
*/
func (tree *bsTree[K]) AssignRowCoordinates() error {
	if tree.root == nil {
		return ErrBSTNoElements
	}

	spacing := tree.areaHeight / (tree.Height() + 1)
	stack := make([]rowFrame[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, rowFrame[K]{node: tree.root, y: spacing / 4})

	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		frame.node.y = frame.y
		if frame.node.left != nil {
			stack = append(stack, rowFrame[K]{node: frame.node.left, y: frame.y + spacing})
		}
		if frame.node.right != nil {
			stack = append(stack, rowFrame[K]{node: frame.node.right, y: frame.y + spacing})
		}
	}
	return nil
}

type columnFrame[K infra.OrderedKey] struct {
	node   *bstNode[K]
	x      int
	lBound int
	rBound int
}

/*
Binary subdivision of the horizontal extent, independent of key values.

	           [0, W]
	             X = W/2
	            /       \
	    [0, X]           [X, W]
	 L = (0+X)/2       R = (X+W)/2

Sibling subtrees never share a horizontal range.
*/
func (tree *bsTree[K]) AssignColumnCoordinates() {
	if tree.root == nil {
		return
	}

	stack := make([]columnFrame[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, columnFrame[K]{
		node:   tree.root,
		x:      tree.areaWidth / 2,
		lBound: 0,
		rBound: tree.areaWidth,
	})

	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		frame.node.x = frame.x
		if frame.node.left != nil {
			stack = append(stack, columnFrame[K]{
				node:   frame.node.left,
				x:      (frame.lBound + frame.x) / 2,
				lBound: frame.lBound,
				rBound: frame.x,
			})
		}
		if frame.node.right != nil {
			stack = append(stack, columnFrame[K]{
				node:   frame.node.right,
				x:      (frame.x + frame.rBound) / 2,
				lBound: frame.x,
				rBound: frame.rBound,
			})
		}
	}
}
