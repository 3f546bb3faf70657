package components

import (
	"strings"
	"testing"
	"time"

	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
)

// sampleTree builds a small arena: /data holding a code file, a media
// subdirectory, and a file with a metadata error.
func sampleTree() (*tree.Tree[tree.EntryData], tree.TreeIndex) {
	t := tree.New(tree.EntryData{})
	root := t.AddNode(t.Root(), tree.EntryData{Name: "/data", Size: 300})
	t.AddNode(root, tree.EntryData{Name: "big.go", Size: 200, Mtime: time.Unix(1700000000, 0)})
	sub := t.AddNode(root, tree.EntryData{Name: "media", Size: 90})
	t.AddNode(sub, tree.EntryData{Name: "song.mp3", Size: 90})
	t.AddNode(root, tree.EntryData{Name: "broken.txt", Size: 10, MetadataError: true})
	t.Data(t.Root()).Size = 300
	return t, root
}

func TestRenderHelp_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderHelp panicked at width=%d: %v", w, r)
				}
			}()
			RenderHelp(theme, w, 10)
		})
	}
}

func TestRenderScanProgress_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	p := ScanProgress{}
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderScanProgress panicked at width=%d: %v", w, r)
				}
			}()
			RenderScanProgress(theme, p, w, 10)
		})
	}
}

func TestRenderFileTypes_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	tr, root := sampleTree()
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderFileTypes panicked at width=%d: %v", w, r)
				}
			}()
			RenderFileTypes(theme, tr, root, true, util.FormatMetric, w, 10)
		})
	}
}

func TestRenderTreemap_SmallSizes(t *testing.T) {
	theme := style.DefaultTheme()
	tr, root := sampleTree()
	for _, dim := range []struct{ w, h int }{{0, 10}, {1, 1}, {2, 2}, {5, 3}, {40, 0}} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderTreemap panicked at %dx%d: %v", dim.w, dim.h, r)
				}
			}()
			RenderTreemap(theme, tr, root, true, util.FormatMetric, dim.w, dim.h)
		})
	}
}

func TestScanProgressRate(t *testing.T) {
	p := ScanProgress{Entries: 1000, Elapsed: 2 * time.Second}
	if got := p.Rate(); got != 500 {
		t.Errorf("Rate() = %v, want 500", got)
	}
	if got := (ScanProgress{Entries: 10}).Rate(); got != 0 {
		t.Errorf("Rate() with zero elapsed = %v, want 0", got)
	}
}

func TestTreeViewRender_RowContents(t *testing.T) {
	tr, root := sampleTree()
	items := tree.SortedChildren(tr, root, tree.DefaultSort())
	tv := &TreeView{
		Theme:      style.DefaultTheme(),
		Layout:     style.NewLayout(100, 24, util.FormatMetric.Width()),
		Tree:       tr,
		Items:      items,
		Cursor:     0,
		ParentSize: tr.Data(root).Size,
		Format:     util.FormatMetric,
	}

	out := tv.Render()
	for _, want := range []string{"media/", "big.go", "broken.txt", "200 B", "!"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestTreeViewRender_Empty(t *testing.T) {
	tr := tree.New(tree.EntryData{})
	tv := &TreeView{
		Theme:  style.DefaultTheme(),
		Layout: style.NewLayout(80, 24, 11),
		Tree:   tr,
	}
	if !strings.Contains(tv.Render(), "(empty directory)") {
		t.Error("Render() of empty items should show placeholder")
	}
}

func TestTreeViewEnsureVisible(t *testing.T) {
	tv := &TreeView{Layout: style.NewLayout(80, 10, 11)} // ContentHeight 6
	tv.Items = make([]tree.TreeIndex, 20)

	tv.Cursor = 10
	tv.EnsureVisible()
	if tv.Offset != 5 {
		t.Errorf("Offset after scrolling down = %d, want 5", tv.Offset)
	}

	tv.Cursor = 2
	tv.EnsureVisible()
	if tv.Offset != 2 {
		t.Errorf("Offset after scrolling up = %d, want 2", tv.Offset)
	}
}

func TestRenderHeader_Contents(t *testing.T) {
	theme := style.DefaultTheme()
	out := RenderHeader(theme, "/data", 1234, 300, util.FormatMetric, 80)
	for _, want := range []string{"duwalk", "/data", "1,234 items", "300 B"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderHeader() missing %q", want)
		}
	}

	if got := RenderHeader(theme, "/data", 1, 1, util.FormatMetric, 5); got != "" {
		t.Errorf("RenderHeader() at width 5 = %q, want empty", got)
	}
}

func TestRenderBreadcrumb_PathChain(t *testing.T) {
	theme := style.DefaultTheme()
	tr, root := sampleTree()
	var media tree.TreeIndex
	for _, c := range tr.Children(root) {
		if tr.Data(c).Name == "media" {
			media = c
		}
	}

	out := RenderBreadcrumb(theme, tr, media, 80)
	for _, want := range []string{"/", "/data", "media"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderBreadcrumb() missing %q", want)
		}
	}
}

func TestRenderFileTypes_Categories(t *testing.T) {
	tr, root := sampleTree()
	out := RenderFileTypes(style.DefaultTheme(), tr, root, true, util.FormatMetric, 100, 20)
	for _, want := range []string{"Code", "Media", "Documents", "Total", ".go"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderFileTypes() missing %q", want)
		}
	}
}

func TestRenderTreemap_Labels(t *testing.T) {
	tr, root := sampleTree()
	out := RenderTreemap(style.DefaultTheme(), tr, root, true, util.FormatMetric, 60, 18)
	for _, want := range []string{"big.go", "media/"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTreemap() missing %q", want)
		}
	}
}

func TestRenderStatusBar_Contents(t *testing.T) {
	theme := style.DefaultTheme()
	info := StatusInfo{
		ItemCount: 3,
		DirSize:   300,
		Errors:    2,
		Format:    util.FormatMetric,
	}
	out := RenderStatusBar(theme, info, 100)
	for _, want := range []string{"3 items", "300 B disk", "2 read errors", "help", "export", "quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStatusBar() missing %q", want)
		}
	}

	info.Apparent = true
	if !strings.Contains(RenderStatusBar(theme, info, 100), "apparent") {
		t.Error("RenderStatusBar() should label apparent sizes")
	}

	info.ErrorMsg = "export failed"
	out = RenderStatusBar(theme, info, 100)
	if !strings.Contains(out, "export failed") {
		t.Error("RenderStatusBar() should show the error message")
	}
	if strings.Contains(out, "3 items") {
		t.Error("RenderStatusBar() error message should replace the stats")
	}
}

func TestRenderTabBar_ActiveAndSort(t *testing.T) {
	out := RenderTabBar(style.DefaultTheme(), 1, tree.SortByMtime, 100)
	for _, want := range []string{"Tree View", "Treemap", "File Types", "Sort: Mtime"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTabBar() missing %q", want)
		}
	}
}
