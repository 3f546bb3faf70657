package tree

import (
	"context"
	"time"

	"github.com/mietkow/duwalk/internal/walk"
)

// updateInterval paces the onProgress callbacks of a running build.
var updateInterval = 250 * time.Millisecond

// EntryData is the node payload of a fully built tree. A directory's Size
// is the sum of its counted descendants; the synthetic root's name is
// empty and its size is recomputed from its direct children at the end.
type EntryData struct {
	Name          string
	Size          uint64
	Mtime         time.Time
	MetadataError bool
}

// Traversal owns the tree produced by one BuildTree run, together with the
// walk counters. TreeIndex handles are only valid against this tree.
type Traversal struct {
	Tree             *Tree[EntryData]
	Root             TreeIndex
	EntriesTraversed uint64
	IOErrors         uint64
	TotalBytes       uint64
	Elapsed          time.Duration
}

// BuildTree walks every root in order and folds the entry streams into one
// tree under a shared synthetic root. onProgress, when non-nil, observes
// the in-progress traversal at a throttled rate; returning true cancels
// the build, in which case the partial tree is discarded and BuildTree
// returns nil. A scan is all or nothing once cancelled.
func BuildTree(walker walk.Walker, opts walk.Options, roots []string, onProgress func(*Traversal) bool) *Traversal {
	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := &Traversal{Tree: New(EntryData{})}
	t.Root = t.Tree.Root()

	fold := folder[EntryData, uint64]{
		newAcc:   func(size uint64) uint64 { return size },
		grow:     func(acc, size uint64) uint64 { return acc + size },
		merge:    func(into, subtree uint64) uint64 { return into + subtree },
		finalize: func(data *EntryData, acc uint64) { data.Size = acc },
		provisional: func(data *EntryData, acc uint64) {
			data.Size = acc
		},
		newNode: func(_ *walk.Entry, name string, size uint64, mtime time.Time, metaErr bool) EntryData {
			return EntryData{Name: name, Size: size, Mtime: mtime, MetadataError: metaErr}
		},
		placeholder: func(rootPath string) EntryData {
			return EntryData{Name: rootPath}
		},
	}

	var tick func(entries, ioErrors uint64) bool
	if onProgress != nil {
		throttle := walk.NewThrottle(updateInterval, updateInterval)
		defer throttle.Stop()
		tick = func(entries, ioErrors uint64) bool {
			if !throttle.Due() {
				return false
			}
			t.EntriesTraversed = entries
			t.IOErrors = ioErrors
			t.Elapsed = time.Since(start)
			return onProgress(t)
		}
	}

	entries, ioErrors, cancelled := runFold(ctx, walker, opts, roots, fold, t.Tree, tick)
	if cancelled {
		return nil
	}

	var total uint64
	for _, c := range t.Tree.Children(t.Root) {
		total += t.Tree.Data(c).Size
	}
	t.Tree.Data(t.Root).Size = total

	t.EntriesTraversed = entries
	t.IOErrors = ioErrors
	t.TotalBytes = total
	t.Elapsed = time.Since(start)
	return t
}
