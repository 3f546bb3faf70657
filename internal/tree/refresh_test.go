package tree

import (
	"errors"
	"testing"
	"time"

	"github.com/mietkow/duwalk/internal/walk"
	"github.com/mietkow/duwalk/internal/walk/walktest"
)

func findRefreshChild(t *testing.T, tr *Tree[RefreshEntryData], parent TreeIndex, name string) TreeIndex {
	t.Helper()
	for _, c := range tr.Children(parent) {
		if tr.Data(c).Name == name {
			return c
		}
	}
	t.Fatalf("no child named %q under node %d", name, parent)
	return 0
}

func TestBuildRefreshTreeFlags(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	w := &walktest.Walker{
		Devices: map[string]uint64{"test": 1},
		Streams: map[string][]walk.EntryResult{
			"test": {
				walktest.Dir(0, "test", walktest.Meta{Device: 1}),
				walktest.Dir(1, "test/a", walktest.Meta{Device: 1}),
				walktest.File(2, "test/a/a.txt", walktest.Meta{Device: 1, Size: 10, MTime: now}),
				walktest.Dir(1, "test/empty", walktest.Meta{Device: 1}),
				walktest.File(1, "test/b.txt", walktest.Meta{Device: 1, Size: 11}),
			},
		},
	}

	tr := BuildRefreshTree(w, walk.Options{}, []string{"test"}, nil)
	if tr == nil {
		t.Fatal("build returned nil without being cancelled")
	}
	if tr.EntriesTraversed != 5 || tr.IOErrors != 0 || tr.TotalBytes != 21 {
		t.Fatalf("traversal = %+v, want 5 entries, 0 errors, 21 bytes", tr)
	}

	test := findRefreshChild(t, tr.Tree, tr.Root, "test")
	a := findRefreshChild(t, tr.Tree, test, "a")
	aTxt := findRefreshChild(t, tr.Tree, a, "a.txt")
	empty := findRefreshChild(t, tr.Tree, test, "empty")
	bTxt := findRefreshChild(t, tr.Tree, test, "b.txt")

	if d := tr.Tree.Data(test); !d.IsDir || !d.IsComplete || d.Size != 21 || d.EntryCount == nil || *d.EntryCount != 4 {
		t.Errorf("test = %+v, want a complete dir of size 21 with 4 descendants", d)
	}
	if d := tr.Tree.Data(a); !d.IsDir || !d.IsComplete || d.Size != 10 || d.EntryCount == nil || *d.EntryCount != 1 {
		t.Errorf("a = %+v, want a complete dir of size 10 with 1 descendant", d)
	}
	if d := tr.Tree.Data(aTxt); d.IsDir || !d.IsComplete || d.Size != 10 || d.EntryCount != nil || !d.Mtime.Equal(now) {
		t.Errorf("a.txt = %+v, want a complete file of size 10", d)
	}
	// A directory the walk never descended into stays incomplete.
	if d := tr.Tree.Data(empty); !d.IsDir || d.IsComplete || d.EntryCount != nil {
		t.Errorf("empty = %+v, want an incomplete dir without a count", d)
	}
	if d := tr.Tree.Data(bTxt); d.IsDir || !d.IsComplete || d.Size != 11 {
		t.Errorf("b.txt = %+v, want a complete file of size 11", d)
	}

	root := tr.Tree.Data(tr.Root)
	if !root.IsDir || !root.IsComplete || root.Size != 21 || root.EntryCount == nil || *root.EntryCount != 5 {
		t.Errorf("root = %+v, want a complete dir of size 21 with 5 entries", root)
	}

	for i := 0; i < tr.Tree.Len(); i++ {
		if tr.Tree.Data(TreeIndex(i)).IsVisited {
			t.Fatalf("node %d is marked visited; the builder must never set that flag", i)
		}
	}
}

func TestBuildRefreshTreeMetadataFailure(t *testing.T) {
	boom := errors.New("stat failed")
	w := &walktest.Walker{
		Devices: map[string]uint64{"r": 1},
		Streams: map[string][]walk.EntryResult{
			"r": {
				walktest.Dir(0, "r", walktest.Meta{Device: 1}),
				walktest.StatError(1, "r/ghost", boom),
			},
		},
	}

	tr := BuildRefreshTree(w, walk.Options{}, []string{"r"}, nil)
	if tr == nil {
		t.Fatal("build returned nil without being cancelled")
	}
	if tr.IOErrors != 1 {
		t.Fatalf("io errors = %d, want 1", tr.IOErrors)
	}
	r := findRefreshChild(t, tr.Tree, tr.Root, "r")
	ghost := tr.Tree.Data(findRefreshChild(t, tr.Tree, r, "ghost"))
	if ghost.IsDir || !ghost.IsComplete || !ghost.MetadataError || ghost.Size != 0 {
		t.Errorf("ghost = %+v, want a complete flagged non-directory of size 0", ghost)
	}
}

func TestBuildRefreshTreeUnreadableRoot(t *testing.T) {
	w := &walktest.Walker{
		Devices: map[string]uint64{"bad": 1},
		Streams: map[string][]walk.EntryResult{
			"bad": {walktest.ReadError(errors.New("permission denied"))},
		},
	}

	tr := BuildRefreshTree(w, walk.Options{}, []string{"bad"}, nil)
	if tr == nil {
		t.Fatal("build returned nil without being cancelled")
	}
	if tr.EntriesTraversed != 1 || tr.IOErrors != 1 {
		t.Fatalf("traversal = %+v, want the failed read counted as 1 entry and 1 error", tr)
	}
	bad := tr.Tree.Data(findRefreshChild(t, tr.Tree, tr.Root, "bad"))
	if bad.IsDir || bad.IsComplete || bad.MetadataError || bad.Size != 0 {
		t.Errorf("placeholder = %+v, want a plain zero-value node", bad)
	}
	if root := tr.Tree.Data(tr.Root); root.EntryCount == nil || *root.EntryCount != 1 {
		t.Errorf("root = %+v, want an entry count of 1 covering the failed read", root)
	}
}

func TestBuildRefreshTreeDeviceIDFailure(t *testing.T) {
	w := &walktest.Walker{
		DeviceErrs: map[string]error{"bad": errors.New("no such device")},
	}

	tr := BuildRefreshTree(w, walk.Options{}, []string{"bad"}, nil)
	if tr == nil {
		t.Fatal("build returned nil without being cancelled")
	}
	if tr.EntriesTraversed != 0 || tr.IOErrors != 1 {
		t.Fatalf("traversal = %+v, want 0 entries and 1 error", tr)
	}
	if got := len(tr.Tree.Children(tr.Root)); got != 0 {
		t.Errorf("root has %d children, want none for a root that never walked", got)
	}
	if root := tr.Tree.Data(tr.Root); root.EntryCount != nil {
		t.Errorf("root count = %v, want nil when nothing was traversed", *root.EntryCount)
	}
}

func TestBuildRefreshTreeFileRoot(t *testing.T) {
	w := &walktest.Walker{
		Devices: map[string]uint64{"f.txt": 1},
		Streams: map[string][]walk.EntryResult{
			"f.txt": {walktest.File(0, "f.txt", walktest.Meta{Device: 1, Size: 42})},
		},
	}

	tr := BuildRefreshTree(w, walk.Options{}, []string{"f.txt"}, nil)
	if tr == nil {
		t.Fatal("build returned nil without being cancelled")
	}
	f := tr.Tree.Data(findRefreshChild(t, tr.Tree, tr.Root, "f.txt"))
	if f.IsDir || !f.IsComplete || f.Size != 42 {
		t.Errorf("file root = %+v, want a complete file of size 42", f)
	}
	root := tr.Tree.Data(tr.Root)
	if root.Size != 42 || root.EntryCount == nil || *root.EntryCount != 1 {
		t.Errorf("root = %+v, want size 42 and 1 entry", root)
	}
}

func TestBuildRefreshTreeCancel(t *testing.T) {
	defer func(prev time.Duration) { updateInterval = prev }(updateInterval)
	updateInterval = time.Nanosecond

	tr := BuildRefreshTree(endlessWalker{}, walk.Options{}, []string{"big"}, func(*RefreshTraversal) bool {
		return true
	})
	if tr != nil {
		t.Fatal("a cancelled refresh build must discard the tree and return nil")
	}
}
