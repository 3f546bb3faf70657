package tree

import (
	"context"
	"time"

	"github.com/mietkow/duwalk/internal/walk"
)

// RefreshEntryData is the node payload of a refresh build. On top of the
// plain payload it tracks directory-ness, the number of descendants, and
// whether the subtree below the node has been fully folded, so a consumer
// can reconcile it against a previously built tree.
type RefreshEntryData struct {
	Name          string
	Size          uint64
	Mtime         time.Time
	EntryCount    *uint64
	IsDir         bool
	MetadataError bool
	IsComplete    bool
	// IsVisited is reserved for the consumer's reconciliation pass; the
	// builder never sets it.
	IsVisited bool
}

// RefreshTraversal owns the tree produced by one BuildRefreshTree run.
type RefreshTraversal struct {
	Tree             *Tree[RefreshEntryData]
	Root             TreeIndex
	EntriesTraversed uint64
	IOErrors         uint64
	TotalBytes       uint64
	Elapsed          time.Duration
}

type refreshAcc struct {
	size    uint64
	entries uint64
}

// BuildRefreshTree is BuildTree's flagged variant. Files are complete the
// moment they are created; a directory becomes complete exactly when the
// walk departs its subtree, which also fixes its descendant count. A
// directory whose subtree was never entered stays incomplete.
func BuildRefreshTree(walker walk.Walker, opts walk.Options, roots []string, onProgress func(*RefreshTraversal) bool) *RefreshTraversal {
	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := &RefreshTraversal{Tree: New(RefreshEntryData{IsDir: true})}
	t.Root = t.Tree.Root()

	fold := folder[RefreshEntryData, refreshAcc]{
		newAcc: func(size uint64) refreshAcc {
			return refreshAcc{size: size, entries: 1}
		},
		grow: func(acc refreshAcc, size uint64) refreshAcc {
			acc.size += size
			acc.entries++
			return acc
		},
		merge: func(into, subtree refreshAcc) refreshAcc {
			into.size += subtree.size
			into.entries += subtree.entries
			return into
		},
		finalize: func(data *RefreshEntryData, acc refreshAcc) {
			if !data.IsDir {
				panic("tree: walker emitted entries out of depth order: departed from a non-directory")
			}
			count := acc.entries
			data.Size = acc.size
			data.EntryCount = &count
			data.IsComplete = true
		},
		newNode: func(e *walk.Entry, name string, size uint64, mtime time.Time, metaErr bool) RefreshEntryData {
			d := RefreshEntryData{Name: name, Size: size, Mtime: mtime, MetadataError: metaErr}
			switch {
			case e.MetaErr != nil:
				d.IsComplete = true
			case e.Meta == nil || e.Meta.IsDir():
				d.IsDir = true
			default:
				d.IsComplete = true
			}
			return d
		},
		placeholder: func(rootPath string) RefreshEntryData {
			return RefreshEntryData{Name: rootPath}
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
	rootData := t.Tree.Data(t.Root)
	rootData.Size = total
	rootData.IsComplete = true
	if entries > 0 {
		count := entries
		rootData.EntryCount = &count
	}

	t.EntriesTraversed = entries
	t.IOErrors = ioErrors
	t.TotalBytes = total
	t.Elapsed = time.Since(start)
	return t
}
