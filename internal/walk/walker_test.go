package walk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// fixtureTree builds root/{a/{a.txt, deep/d.txt}, b.txt, c/} and returns root.
func fixtureTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "root")
	writeFile(t, filepath.Join(root, "a", "a.txt"), 10)
	writeFile(t, filepath.Join(root, "a", "deep", "d.txt"), 7)
	writeFile(t, filepath.Join(root, "b.txt"), 11)
	if err := os.MkdirAll(filepath.Join(root, "c"), 0o755); err != nil {
		t.Fatalf("mkdir c: %v", err)
	}
	return root
}

func drain(t *testing.T, w Walker, root string) []EntryResult {
	t.Helper()
	device, err := w.DeviceID(root)
	if err != nil {
		t.Fatalf("DeviceID(%s): %v", root, err)
	}
	var out []EntryResult
	for r := range w.Walk(context.Background(), root, device) {
		out = append(out, r)
	}
	return out
}

func TestLocalWalkerAlphabeticalOrder(t *testing.T) {
	root := fixtureTree(t)
	w := NewLocalWalker(Options{Threads: 4, Sorting: SortAlphabetical})

	results := drain(t, w, root)

	want := []struct {
		path  string
		depth int
	}{
		{root, 0},
		{filepath.Join(root, "a"), 1},
		{filepath.Join(root, "a", "a.txt"), 2},
		{filepath.Join(root, "a", "deep"), 2},
		{filepath.Join(root, "a", "deep", "d.txt"), 3},
		{filepath.Join(root, "b.txt"), 1},
		{filepath.Join(root, "c"), 1},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(results), len(want), results)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("entry %d: unexpected stream error %v", i, r.Err)
		}
		e := r.Entry
		if e.Path != want[i].path || e.Depth != want[i].depth {
			t.Errorf("entry %d: got (%s, depth %d), want (%s, depth %d)",
				i, e.Path, e.Depth, want[i].path, want[i].depth)
		}
		if e.Meta == nil {
			t.Errorf("entry %d (%s): missing metadata", i, e.Path)
		}
	}
}

// TestLocalWalkerContract replays the depth sequence against a stack of
// open directories: every entry must sit directly under the innermost open
// directory at its depth, which is exactly the ordering the consumers
// depend on.
func TestLocalWalkerContract(t *testing.T) {
	root := fixtureTree(t)
	for i := 0; i < 3; i++ {
		writeFile(t, filepath.Join(root, "wide", string(rune('p'+i)), "f.txt"), 4)
	}
	w := NewLocalWalker(Options{Threads: 8})

	results := drain(t, w, root)
	if len(results) == 0 {
		t.Fatal("no entries")
	}
	if results[0].Entry.Depth != 0 || results[0].Entry.Path != root {
		t.Fatalf("first entry is %+v, want the root at depth 0", results[0].Entry)
	}

	var open []string // open[i] is the emitting directory at depth i
	seen := map[string]bool{}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("entry %d: unexpected stream error %v", i, r.Err)
		}
		e := r.Entry
		if e.Depth < 0 || e.Depth > len(open) {
			t.Fatalf("entry %d (%s): depth %d cannot follow %d open levels", i, e.Path, e.Depth, len(open))
		}
		open = open[:e.Depth]
		if e.Depth > 0 && e.Parent != open[e.Depth-1] {
			t.Fatalf("entry %d (%s): parent %s, want %s", i, e.Path, e.Parent, open[e.Depth-1])
		}
		if e.Meta != nil && e.Meta.IsDir() {
			open = append(open, e.Path)
		}
		seen[e.Path] = true
	}

	wantPaths := []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "a.txt"),
		filepath.Join(root, "a", "deep"),
		filepath.Join(root, "a", "deep", "d.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "c"),
		filepath.Join(root, "wide"),
		filepath.Join(root, "wide", "p"),
		filepath.Join(root, "wide", "p", "f.txt"),
		filepath.Join(root, "wide", "q"),
		filepath.Join(root, "wide", "q", "f.txt"),
		filepath.Join(root, "wide", "r"),
		filepath.Join(root, "wide", "r", "f.txt"),
	}
	if len(seen) != len(wantPaths) {
		t.Fatalf("saw %d distinct paths, want %d", len(seen), len(wantPaths))
	}
	for _, p := range wantPaths {
		if !seen[p] {
			t.Errorf("path %s never emitted", p)
		}
	}
}

func TestLocalWalkerSerialMatchesParallel(t *testing.T) {
	root := fixtureTree(t)

	type step struct {
		path  string
		depth int
	}
	sequence := func(threads int) []step {
		w := NewLocalWalker(Options{Threads: threads, Sorting: SortAlphabetical})
		var out []step
		for _, r := range drain(t, w, root) {
			if r.Err != nil {
				t.Fatalf("threads=%d: stream error %v", threads, r.Err)
			}
			out = append(out, step{r.Entry.Path, r.Entry.Depth})
		}
		return out
	}

	serial := sequence(1)
	parallel := sequence(8)
	if len(serial) != len(parallel) {
		t.Fatalf("serial yielded %d entries, parallel %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("entry %d differs: serial %+v, parallel %+v", i, serial[i], parallel[i])
		}
	}
}

func TestLocalWalkerFileRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "only.txt")
	writeFile(t, file, 42)
	w := NewLocalWalker(Options{})

	results := drain(t, w, file)
	if len(results) != 1 {
		t.Fatalf("got %d entries, want 1", len(results))
	}
	e := results[0].Entry
	if e.Depth != 0 || e.Path != file {
		t.Fatalf("got %+v, want the file itself at depth 0", e)
	}
	if e.Meta == nil || e.Meta.IsDir() {
		t.Fatal("file root should carry non-directory metadata")
	}
	if got := e.Meta.ApparentSize(); got != 42 {
		t.Fatalf("apparent size = %d, want 42", got)
	}
}

func TestLocalWalkerMissingRoot(t *testing.T) {
	w := NewLocalWalker(Options{})
	missing := filepath.Join(t.TempDir(), "nope")

	out := w.Walk(context.Background(), missing, 0)
	var results []EntryResult
	for r := range out {
		results = append(results, r)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("got %+v, want a single stream error", results)
	}
}

func TestLocalWalkerIgnoreDirs(t *testing.T) {
	root := fixtureTree(t)
	ignored := filepath.Join(root, "a")
	w := NewLocalWalker(Options{
		Sorting:    SortAlphabetical,
		IgnoreDirs: NewIgnoreSet([]string{ignored}),
	})

	var paths []string
	for _, r := range drain(t, w, root) {
		paths = append(paths, r.Entry.Path)
	}

	foundIgnored := false
	for _, p := range paths {
		if p == ignored {
			foundIgnored = true
		}
		if p == filepath.Join(ignored, "a.txt") {
			t.Fatal("descended into an ignored directory")
		}
	}
	if !foundIgnored {
		t.Fatal("the ignored directory itself should still be emitted")
	}
}

func TestLocalWalkerCancel(t *testing.T) {
	root := fixtureTree(t)
	w := NewLocalWalker(Options{Threads: 2})
	device, err := w.DeviceID(root)
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := w.Walk(ctx, root, device)
	<-out
	cancel()

	// The stream must terminate; the test would time out otherwise.
	n := 0
	for range out {
		n++
	}
	if n > 16 {
		t.Fatalf("drained %d entries after cancel, expected the stream to wind down", n)
	}
}

func TestLocalWalkerHardlinkMetadata(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, 9)
	b := filepath.Join(dir, "b.txt")
	if err := os.Link(a, b); err != nil {
		t.Skipf("hard links unsupported here: %v", err)
	}

	w := NewLocalWalker(Options{Sorting: SortAlphabetical})
	byName := map[string]Metadata{}
	for _, r := range drain(t, w, dir) {
		byName[r.Entry.Name] = r.Entry.Meta
	}

	ma, mb := byName["a.txt"], byName["b.txt"]
	if ma == nil || mb == nil {
		t.Fatal("both links should be emitted")
	}
	if ma.Nlink() < 2 || mb.Nlink() < 2 {
		t.Fatalf("nlink = %d/%d, want >= 2", ma.Nlink(), mb.Nlink())
	}
	if ma.Ino() != mb.Ino() || ma.Dev() != mb.Dev() {
		t.Fatal("hard links should share (dev, ino)")
	}
}

func TestLocalWalkerDeviceConsistent(t *testing.T) {
	root := fixtureTree(t)
	w := NewLocalWalker(Options{})
	device, err := w.DeviceID(root)
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	for r := range w.Walk(context.Background(), root, device) {
		if r.Err != nil {
			t.Fatalf("stream error: %v", r.Err)
		}
		if r.Entry.Meta.Dev() != device {
			t.Fatalf("%s on device %d, root on %d", r.Entry.Path, r.Entry.Meta.Dev(), device)
		}
	}
}
