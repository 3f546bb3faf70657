package tree

import (
	"context"
	"time"

	"github.com/mietkow/duwalk/internal/walk"
)

// folder parameterizes the depth-stack fold over the node payload D and the
// per-level accumulator A. BuildTree and BuildRefreshTree are the two
// instantiations; the algorithm itself lives once, in buildState.
type folder[D, A any] struct {
	// newAcc seeds a fresh accumulator when the walk enters a directory,
	// from the first child's counted size.
	newAcc func(size uint64) A
	// grow folds one more sibling's counted size into the current level.
	grow func(acc A, size uint64) A
	// merge folds a finalized subtree's accumulator into the level above.
	merge func(into, subtree A) A
	// finalize writes the accumulator into a directory node on departure
	// from its subtree.
	finalize func(data *D, acc A)
	// provisional, when set, refreshes the current parent's payload while
	// its subtree is still open, so mid-walk observers see partial sizes.
	provisional func(data *D, acc A)
	// newNode builds a payload from one walked entry.
	newNode func(e *walk.Entry, name string, size uint64, mtime time.Time, metaErr bool) D
	// placeholder builds a payload standing in for a root that failed
	// before producing any entries.
	placeholder func(rootPath string) D
}

type buildState[D, A any] struct {
	tree   *Tree[D]
	fold   folder[D, A]
	opts   walk.Options
	inodes *walk.InodeFilter

	rootDevice uint64

	parent        TreeIndex
	previousIndex TreeIndex
	previousDepth int
	acc           A
	accStack      []A

	entries  uint64
	ioErrors uint64
}

// step consumes one successfully enumerated entry. Entries must arrive in
// the pre-order depth-first order the walker contract promises; a violation
// exhausts the accumulator stack and aborts.
func (st *buildState[D, A]) step(e *walk.Entry) {
	var (
		size    uint64
		mtime   time.Time
		metaErr bool
	)
	switch {
	case e.MetaErr != nil:
		st.ioErrors++
		metaErr = true
	case e.Meta != nil:
		var err error
		if size, err = walk.CountedSize(st.opts, st.inodes, st.rootDevice, e.Meta); err != nil {
			st.ioErrors++
		}
		if mtime, err = e.Meta.Modified(); err != nil {
			st.ioErrors++
			metaErr = true
		}
	}

	name := e.Name
	if e.Depth == 0 {
		name = e.Path
	}

	switch {
	case e.Depth > st.previousDepth:
		st.accStack = append(st.accStack, st.acc)
		st.acc = st.fold.newAcc(size)
		st.parent = st.previousIndex
	case e.Depth < st.previousDepth:
		for level := st.previousDepth; level > e.Depth; level-- {
			st.fold.finalize(st.tree.Data(st.parent), st.acc)
			st.acc = st.fold.merge(st.pop(), st.acc)
			st.parent = st.mustParent(st.parent)
		}
		st.acc = st.fold.grow(st.acc, size)
		if st.fold.provisional != nil {
			st.fold.provisional(st.tree.Data(st.parent), st.acc)
		}
	default:
		st.acc = st.fold.grow(st.acc, size)
	}

	st.previousIndex = st.tree.AddNode(st.parent, st.fold.newNode(e, name, size, mtime, metaErr))
	st.previousDepth = e.Depth
}

// finish unwinds the remaining open directories after the last root's
// stream is drained, exactly like a depth decrease back to level zero.
func (st *buildState[D, A]) finish() {
	for level := st.previousDepth; level > 0; level-- {
		st.fold.finalize(st.tree.Data(st.parent), st.acc)
		st.acc = st.fold.merge(st.pop(), st.acc)
		st.parent = st.mustParent(st.parent)
	}
}

func (st *buildState[D, A]) pop() A {
	if len(st.accStack) == 0 {
		panic("tree: walker emitted entries out of depth order: aggregate stack exhausted")
	}
	top := st.accStack[len(st.accStack)-1]
	st.accStack = st.accStack[:len(st.accStack)-1]
	return top
}

func (st *buildState[D, A]) mustParent(i TreeIndex) TreeIndex {
	p, ok := st.tree.Parent(i)
	if !ok {
		panic("tree: walker emitted entries out of depth order: no parent above root")
	}
	return p
}

// runFold drains every root through the depth-stack fold. Roots are
// processed strictly sequentially with continuous state: the next root's
// depth-zero entry naturally unwinds the previous root's open directories.
// Every stream element counts as traversed, failed reads included. tick is
// called after each element; returning true abandons the build.
func runFold[D, A any](ctx context.Context, walker walk.Walker, opts walk.Options, roots []string, fold folder[D, A], tr *Tree[D], tick func(entries, ioErrors uint64) bool) (entries, ioErrors uint64, cancelled bool) {
	st := &buildState[D, A]{
		tree:          tr,
		fold:          fold,
		opts:          opts,
		inodes:        walk.NewInodeFilter(),
		parent:        tr.Root(),
		previousIndex: tr.Root(),
	}

	for _, root := range roots {
		device, err := walker.DeviceID(root)
		if err != nil {
			st.ioErrors++
			continue
		}
		st.rootDevice = device

		produced := false
		for r := range walker.Walk(ctx, root, device) {
			st.entries++
			if r.Err != nil {
				st.ioErrors++
				// An unreadable root still gets a node so it shows up
				// in the result; later stream errors do not.
				if !produced {
					tr.AddNode(tr.Root(), fold.placeholder(root))
					produced = true
				}
			} else {
				produced = true
				st.step(&r.Entry)
			}
			if tick != nil && tick(st.entries, st.ioErrors) {
				return st.entries, st.ioErrors, true
			}
		}
	}
	st.finish()
	return st.entries, st.ioErrors, false
}
