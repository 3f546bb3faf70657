// Package tree folds depth-first entry streams into size-annotated trees.
package tree

// TreeIndex is a handle into one tree's node arena. It is only meaningful
// against the tree that issued it and must never be used across trees.
type TreeIndex int

const noParent TreeIndex = -1

type node[D any] struct {
	data     D
	parent   TreeIndex
	children []TreeIndex
}

// Tree is an append-only arena of nodes linked by parent indices. Index 0
// is the synthetic root created by New; every other node has exactly one
// parent. Nodes are never removed, so indices stay valid for the lifetime
// of the tree.
type Tree[D any] struct {
	nodes []node[D]
}

// New returns a tree holding only the synthetic root.
func New[D any](rootData D) *Tree[D] {
	t := &Tree[D]{nodes: make([]node[D], 0, 64)}
	t.nodes = append(t.nodes, node[D]{data: rootData, parent: noParent})
	return t
}

// Root returns the index of the synthetic root.
func (t *Tree[D]) Root() TreeIndex { return 0 }

// Len returns the number of nodes, root included.
func (t *Tree[D]) Len() int { return len(t.nodes) }

// AddNode appends a node under parent and returns its index. Children keep
// insertion order.
func (t *Tree[D]) AddNode(parent TreeIndex, data D) TreeIndex {
	idx := TreeIndex(len(t.nodes))
	t.nodes = append(t.nodes, node[D]{data: data, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// Data returns the payload of i for reading or in-place update. The
// pointer is invalidated by the next AddNode.
func (t *Tree[D]) Data(i TreeIndex) *D { return &t.nodes[i].data }

// Parent returns the parent of i; ok is false only for the root.
func (t *Tree[D]) Parent(i TreeIndex) (TreeIndex, bool) {
	p := t.nodes[i].parent
	return p, p != noParent
}

// Children returns the child indices of i in insertion order. The slice is
// owned by the tree; callers that reorder must copy first.
func (t *Tree[D]) Children(i TreeIndex) []TreeIndex { return t.nodes[i].children }
