package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xbst/lib/infra"
)

func preorderKeys[K infra.OrderedKey](tree BSTree[K]) []K {
	keys := make([]K, 0, tree.Len())
	tree.Walk(func(depth int, node BSTNode[K]) bool {
		keys = append(keys, node.Key())
		return true
	})
	return keys
}

func inorderKeys[K infra.OrderedKey](tree BSTree[K]) []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(idx int64, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func TestNilNode(t *testing.T) {
	tree := NewBST[int](800, 600)
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())

	tree.Insert(1)
	require.NotNil(t, tree.Root())
	require.Nil(t, tree.Root().Left())
	require.Nil(t, tree.Root().Right())

	var nilNode *bstNode[int]
	require.False(t, nilNode.IsActive())
	nilNode.SetActive(true)
}

func TestBST_InsertShape(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{50, 30, 70, 20, 40} {
		tree.Insert(key)
	}

	require.Equal(t, int64(5), tree.Len())
	root := tree.Root()
	require.Equal(t, 50, root.Key())
	require.Equal(t, 30, root.Left().Key())
	require.Equal(t, 70, root.Right().Key())
	require.Equal(t, 20, root.Left().Left().Key())
	require.Equal(t, 40, root.Left().Right().Key())
	require.Nil(t, root.Right().Left())
	require.Nil(t, root.Right().Right())

	require.Equal(t, []int{50, 30, 20, 40, 70}, preorderKeys[int](tree))
	require.Equal(t, []int{20, 30, 40, 50, 70}, inorderKeys[int](tree))
	require.Equal(t, 2, tree.Height())
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))
}

func TestBST_DuplicatesGoLeft(t *testing.T) {
	tree := NewBST[int](800, 600)
	tree.Insert(5)
	tree.Insert(5)
	tree.Insert(3)
	tree.Insert(5)

	root := tree.Root()
	require.Equal(t, 5, root.Key())
	require.Nil(t, root.Right())
	require.Equal(t, 5, root.Left().Key())
	// The last 5 goes left twice, then right of 3.
	require.Equal(t, 3, root.Left().Left().Key())
	require.Equal(t, 5, root.Left().Left().Right().Key())
	require.Equal(t, int64(4), tree.Len())
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))

	require.NoError(t, tree.Remove(5))
	require.Equal(t, int64(3), tree.Len())
	require.Equal(t, []int{3, 5, 5}, inorderKeys[int](tree))
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))
}

func TestBST_Search(t *testing.T) {
	tree := NewBST[int](800, 600)
	node, err := tree.Search(1)
	require.ErrorIs(t, err, ErrBSTElementNotFound)
	require.Nil(t, node)

	for _, key := range []int{50, 30, 70, 20, 40} {
		tree.Insert(key)
	}
	for _, key := range []int{50, 30, 70, 20, 40} {
		node, err = tree.Search(key)
		require.NoError(t, err)
		require.Equal(t, key, node.Key())
	}
	for _, key := range []int{0, 25, 45, 60, 100} {
		_, err = tree.Search(key)
		require.ErrorIs(t, err, ErrBSTElementNotFound)
	}
}

func TestBST_SearchHandleActiveFlag(t *testing.T) {
	tree := NewBST[string](800, 600)
	tree.Insert("m")
	tree.Insert("c")

	node, err := tree.Search("c")
	require.NoError(t, err)
	require.False(t, node.IsActive())
	node.SetActive(true)
	require.True(t, tree.Root().Left().IsActive())
	require.False(t, tree.Root().IsActive())
	node.SetActive(false)
	require.False(t, tree.Root().Left().IsActive())
}

func TestBST_RemoveRootSucc(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{50, 30, 70, 20, 40} {
		tree.Insert(key)
	}

	require.NoError(t, tree.Remove(50))
	root := tree.Root()
	require.Equal(t, 70, root.Key())
	require.Nil(t, root.Right())
	require.Equal(t, 30, root.Left().Key())
	require.Equal(t, 20, root.Left().Left().Key())
	require.Equal(t, 40, root.Left().Right().Key())
	require.Equal(t, int64(4), tree.Len())

	_, err := tree.Search(50)
	require.ErrorIs(t, err, ErrBSTElementNotFound)
	require.ErrorIs(t, tree.Remove(50), ErrBSTElementNotFound)
	require.Equal(t, int64(4), tree.Len())
}

func TestBST_RemoveDeepSucc(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{50, 30, 70, 60, 80, 65} {
		tree.Insert(key)
	}

	// succ of 50 is 60 which owns a right child 65.
	require.NoError(t, tree.Remove(50))
	require.Equal(t, []int{60, 30, 70, 65, 80}, preorderKeys[int](tree))
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))

	// succ is the right child itself
	require.NoError(t, tree.Remove(70))
	require.Equal(t, []int{60, 30, 80, 65}, preorderKeys[int](tree))

	// leaf
	require.NoError(t, tree.Remove(30))
	require.Equal(t, []int{60, 80, 65}, preorderKeys[int](tree))

	for _, key := range []int{60, 80, 65} {
		require.NoError(t, tree.Remove(key))
	}
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, -1, tree.Height())
	require.ErrorIs(t, tree.Remove(60), ErrBSTElementNotFound)
}

func TestBST_Height(t *testing.T) {
	tree := NewBST[int](800, 600)
	require.Equal(t, -1, tree.Height())

	tree.Insert(10)
	require.Equal(t, 0, tree.Height())

	chain := NewBST[int](800, 600)
	n := 32
	for i := 0; i < n; i++ {
		chain.Insert(i)
	}
	require.Equal(t, n-1, chain.Height())
	require.Equal(t, int64(n), chain.Len())
}

func TestBST_Desc(t *testing.T) {
	tree := NewBST[int](800, 600, WithBSTDesc[int]())
	for _, key := range []int{50, 30, 70, 20, 40} {
		tree.Insert(key)
	}
	require.Equal(t, 30, tree.Root().Right().Key())
	require.Equal(t, 70, tree.Root().Left().Key())
	require.Equal(t, []int{70, 50, 40, 30, 20}, inorderKeys[int](tree))
	require.NoError(t, BSTOrderViolationValidate[int](tree, infra.DescOrderedKeyComparator[int]()))
	require.Error(t, BSTOrderViolationValidate[int](tree, nil))

	require.NoError(t, tree.Remove(50))
	require.Equal(t, []int{70, 40, 30, 20}, inorderKeys[int](tree))
}

func TestBST_CustomComparator(t *testing.T) {
	// Shorter keys first, ties ordered lexically.
	byLen := func(i, j string) int64 {
		if len(i) != len(j) {
			return int64(len(i) - len(j))
		}
		if i == j {
			return 0
		} else if i < j {
			return -1
		}
		return 1
	}
	tree := NewBST[string](800, 600, WithBSTComparator[string](byLen), WithBSTComparator[string](nil))
	for _, key := range []string{"ccc", "a", "bb", "dddd"} {
		tree.Insert(key)
	}
	require.Equal(t, []string{"a", "bb", "ccc", "dddd"}, inorderKeys[string](tree))
	require.NoError(t, BSTOrderViolationValidate[string](tree, byLen))
}

func TestBST_FloatKeys(t *testing.T) {
	tree := NewBST[float64](800, 600)
	for _, key := range []float64{0.5, -1.25, 3.75, 0.5, 2} {
		tree.Insert(key)
	}
	require.Equal(t, []float64{-1.25, 0.5, 0.5, 2, 3.75}, inorderKeys[float64](tree))
	node, err := tree.Search(3.75)
	require.NoError(t, err)
	require.Equal(t, 3.75, node.Key())
	require.NoError(t, tree.Remove(0.5))
	require.Equal(t, []float64{-1.25, 0.5, 2, 3.75}, inorderKeys[float64](tree))
}

func TestBST_ForeachBreak(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{4, 2, 6, 1, 3, 5, 7} {
		tree.Insert(key)
	}
	visited := make([]int, 0, 3)
	tree.Foreach(func(idx int64, key int) bool {
		visited = append(visited, key)
		return idx < 2
	})
	require.Equal(t, []int{1, 2, 3}, visited)

	visited = visited[:0]
	tree.Walk(func(depth int, node BSTNode[int]) bool {
		visited = append(visited, node.Key())
		return depth < 1
	})
	require.Equal(t, []int{4, 2}, visited)
}

func TestBST_Release(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{4, 2, 6, 1, 3, 5, 7} {
		tree.Insert(key)
	}
	node, err := tree.Search(6)
	require.NoError(t, err)
	node.SetActive(true)

	tree.Release()
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, -1, tree.Height())
	require.False(t, node.IsActive())
	require.Nil(t, node.Left())
	require.Nil(t, node.Right())
}

func TestBST_RemoveSuccWithDuplicates(t *testing.T) {
	tree := NewBST[int](800, 600)
	for _, key := range []int{5, 3, 8, 6, 6} {
		tree.Insert(key)
	}
	// 8.left = 6, whose left is the second 6 and the minimum of 5's right subtree.
	require.NoError(t, tree.Remove(5))

	root := tree.Root()
	require.Equal(t, 6, root.Key())
	require.Equal(t, 3, root.Left().Key())
	require.Equal(t, 8, root.Right().Key())
	require.Equal(t, 6, root.Right().Left().Key())
	require.Nil(t, root.Right().Left().Left())
	require.Nil(t, root.Right().Right())
	require.Equal(t, int64(4), tree.Len())
	require.Equal(t, []int{3, 6, 6, 8}, inorderKeys[int](tree))
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))

	require.NoError(t, tree.Remove(6))
	require.Equal(t, []int{3, 6, 8}, inorderKeys[int](tree))
	node, err := tree.Search(6)
	require.NoError(t, err)
	require.Equal(t, 6, node.Key())
	require.NoError(t, BSTOrderViolationValidate[int](tree, nil))
}

func TestBST_RandomInsertRemove(t *testing.T) {
	rnd := randv2.New(randv2.NewPCG(2024, 10))
	tree := NewBST[int64](1<<20, 1<<20)
	expected := make([]int64, 0, 1024)
	for i := 0; i < 1024; i++ {
		key := rnd.Int64N(256)
		tree.Insert(key)
		expected = append(expected, key)
	}
	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })
	require.Equal(t, int64(len(expected)), tree.Len())
	require.Equal(t, expected, inorderKeys[int64](tree))
	require.NoError(t, BSTOrderViolationValidate[int64](tree, nil))

	for _, key := range expected {
		node, err := tree.Search(key)
		require.NoError(t, err)
		require.Equal(t, key, node.Key())
	}

	for i := 0; i < len(expected); i += 2 {
		require.NoError(t, tree.Remove(expected[i]))
		require.NoError(t, BSTOrderViolationValidate[int64](tree, nil))
	}
	remaining := make([]int64, 0, len(expected)/2)
	for i := 1; i < len(expected); i += 2 {
		remaining = append(remaining, expected[i])
	}
	require.Equal(t, int64(len(remaining)), tree.Len())
	require.Equal(t, remaining, inorderKeys[int64](tree))

	for _, key := range remaining {
		require.NoError(t, tree.Remove(key))
	}
	require.Nil(t, tree.Root())
	_, err := tree.Search(remaining[0])
	require.ErrorIs(t, err, ErrBSTElementNotFound)
}

func TestBST_RemoveKeepsOthersFindable(t *testing.T) {
	rnd := randv2.New(randv2.NewPCG(7, 7))
	keys := rnd.Perm(200)
	tree := NewBST[int](800, 600)
	for _, key := range keys {
		tree.Insert(key)
	}
	removed := make(map[int]struct{}, 50)
	for _, key := range keys[:50] {
		require.NoError(t, tree.Remove(key))
		removed[key] = struct{}{}
	}
	for _, key := range keys {
		_, err := tree.Search(key)
		if _, ok := removed[key]; ok {
			require.ErrorIs(t, err, ErrBSTElementNotFound)
			require.ErrorIs(t, tree.Remove(key), ErrBSTElementNotFound)
			continue
		}
		require.NoError(t, err)
	}
}
