package tree

import (
	"testing"
	"time"
)

func TestTreeAddNode(t *testing.T) {
	tr := New(EntryData{})
	root := tr.Root()
	a := tr.AddNode(root, EntryData{Name: "a", Size: 10})
	b := tr.AddNode(root, EntryData{Name: "b", Size: 20})
	c := tr.AddNode(a, EntryData{Name: "c", Size: 30})

	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}
	kids := tr.Children(root)
	if len(kids) != 2 || kids[0] != a || kids[1] != b {
		t.Errorf("root children = %v, want [%d %d] in insertion order", kids, a, b)
	}
	if p, ok := tr.Parent(c); !ok || p != a {
		t.Errorf("Parent(c) = (%d, %v), want (%d, true)", p, ok, a)
	}
	if _, ok := tr.Parent(root); ok {
		t.Error("the root must not report a parent")
	}
}

func TestTreeDataUpdatesInPlace(t *testing.T) {
	tr := New(EntryData{})
	a := tr.AddNode(tr.Root(), EntryData{Name: "a", Size: 10})
	tr.Data(a).Size = 25
	if got := tr.Data(a).Size; got != 25 {
		t.Errorf("Size = %d, want 25", got)
	}
}

func TestSortedChildren(t *testing.T) {
	now := time.Now()
	tr := New(EntryData{})
	root := tr.Root()
	dir := tr.AddNode(root, EntryData{Name: "a_dir", Size: 30, Mtime: now})
	tr.AddNode(dir, EntryData{Name: "inner", Size: 30})
	b := tr.AddNode(root, EntryData{Name: "b.txt", Size: 10, Mtime: now.Add(-1 * time.Hour)})
	c := tr.AddNode(root, EntryData{Name: "c.txt", Size: 20, Mtime: now.Add(-2 * time.Hour)})

	name := func(i TreeIndex) string { return tr.Data(i).Name }

	// Size descending, dirs first
	got := SortedChildren(tr, root, DefaultSort())
	if name(got[0]) != "a_dir" {
		t.Errorf("expected dir first, got %q", name(got[0]))
	}
	if name(got[1]) != "c.txt" || name(got[2]) != "b.txt" {
		t.Error("expected files sorted by size descending")
	}

	// Name ascending
	got = SortedChildren(tr, root, SortConfig{Field: SortByName, Order: SortAsc})
	if name(got[0]) != "a_dir" || name(got[1]) != "b.txt" || name(got[2]) != "c.txt" {
		t.Error("expected items sorted by name ascending")
	}

	// Mtime descending
	got = SortedChildren(tr, root, SortConfig{Field: SortByMtime, Order: SortDesc})
	if name(got[0]) != "a_dir" { // most recent
		t.Errorf("expected most recent first, got %q", name(got[0]))
	}

	// The tree's own order is untouched.
	kids := tr.Children(root)
	if kids[0] != dir || kids[1] != b || kids[2] != c {
		t.Error("sorting must not reorder the tree's child slice")
	}
}

func TestSortedChildrenNaturalNames(t *testing.T) {
	tr := New(EntryData{})
	root := tr.Root()
	tr.AddNode(root, EntryData{Name: "file10.txt"})
	tr.AddNode(root, EntryData{Name: "file2.txt"})

	got := SortedChildren(tr, root, SortConfig{Field: SortByName, Order: SortAsc})
	if tr.Data(got[0]).Name != "file2.txt" {
		t.Errorf("natural order puts file2 before file10, got %q first", tr.Data(got[0]).Name)
	}
}

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		name string
		want FileCategory
	}{
		{"photo.jpg", CatMedia},
		{"PHOTO.JPG", CatMedia},
		{"main.go", CatCode},
		{"archive.tar.gz", CatArchive},
		{"readme.md", CatDocument},
		{"debug.log", CatSystem},
		{"program.exe", CatExecutable},
		{"noext", CatOther},
		{".hidden", CatOther},
	}

	for _, tt := range tests {
		got := ClassifyFile(tt.name)
		if got != tt.want {
			t.Errorf("ClassifyFile(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCategoryStats(t *testing.T) {
	tr := New(EntryData{})
	root := tr.Root()
	top := tr.AddNode(root, EntryData{Name: "top", Size: 45})
	tr.AddNode(top, EntryData{Name: "clip.mp4", Size: 30})
	sub := tr.AddNode(top, EntryData{Name: "src", Size: 15})
	tr.AddNode(sub, EntryData{Name: "main.go", Size: 10})
	tr.AddNode(sub, EntryData{Name: "util.go", Size: 5})

	stats := CategoryStats(tr, top)
	if len(stats) != 2 {
		t.Fatalf("got %d categories, want 2: %+v", len(stats), stats)
	}
	if stats[0].Category != CatMedia || stats[0].Bytes != 30 || stats[0].Count != 1 {
		t.Errorf("stats[0] = %+v, want Media with 30 bytes over 1 file", stats[0])
	}
	if stats[1].Category != CatCode || stats[1].Bytes != 15 || stats[1].Count != 2 {
		t.Errorf("stats[1] = %+v, want Code with 15 bytes over 2 files", stats[1])
	}
}
