package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
)

// TreeView renders the main tree list view. Items are indexes into Tree,
// already sorted and filtered by the caller; ParentSize is the size of
// the directory being listed and is the 100% mark for the usage bars.
type TreeView struct {
	Theme      style.Theme
	Layout     style.Layout
	Tree       *tree.Tree[tree.EntryData]
	Items      []tree.TreeIndex
	Cursor     int
	Offset     int
	ParentSize uint64
	Format     util.ByteFormat
}

// Render renders the tree view.
func (tv *TreeView) Render() string {
	width := tv.Layout.ContentWidth()

	if len(tv.Items) == 0 {
		empty := lipgloss.NewStyle().Foreground(tv.Theme.TextMuted).Render("  (empty directory)")
		return style.FullWidth(empty, width)
	}

	contentHeight := tv.Layout.ContentHeight()
	barWidth := tv.Layout.BarWidth()
	nameWidth := tv.Layout.NameWidth()

	start := tv.Offset
	end := start + contentHeight
	if end > len(tv.Items) {
		end = len(tv.Items)
	}

	var lines []string
	for i := start; i < end; i++ {
		line := tv.renderRow(tv.Items[i], i == tv.Cursor, barWidth, nameWidth, width)
		lines = append(lines, line)
	}

	// Pad remaining height
	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

func (tv *TreeView) renderRow(item tree.TreeIndex, selected bool, barWidth, nameWidth, totalWidth int) string {
	d := tv.Tree.Data(item)
	isDir := len(tv.Tree.Children(item)) > 0

	// Percentage of the listed directory
	pct := util.Percent(d.Size, tv.ParentSize)
	pctStr := fmt.Sprintf("%5.1f%%", pct)

	// Gradient bar
	bar := tv.Theme.BarGradient(barWidth, pct/100.0)

	// Icon cell, clamped to exactly two terminal cells
	icon := util.EntryIcon(d.Name, isDir)
	icon = style.FullWidth(ansi.Truncate(icon, 2, ""), 2)

	// Name, truncated by display width so wide runes don't break the column
	name := d.Name
	if isDir {
		name += "/"
	}
	avail := nameWidth
	if d.MetadataError {
		avail -= 2 // leave room for the " !" flag
	}
	name = ansi.Truncate(name, avail, "…")

	var nameStyled string
	if isDir {
		nameStyled = tv.Theme.DirName.Render(name)
	} else {
		nameStyled = tv.Theme.FileName.Render(name)
	}
	if d.MetadataError {
		nameStyled += tv.Theme.ErrorText.Render(" !")
	}
	nameCell := style.FullWidth(nameStyled, nameWidth)

	// Cursor indicator (2 chars)
	indicator := "  "
	if selected {
		indicator = tv.Theme.CursorIndicator.Render(" >")
	}

	sizeStr := tv.Format.Format(d.Size)
	pctStyled := tv.Theme.PercentText.Render(pctStr)
	sizeStyled := tv.Theme.SizeText.Width(tv.Layout.SizeWidth).Render(sizeStr)

	// Build the row from segments of known visual width
	row := fmt.Sprintf("%s%s [%s] %s %s %s",
		indicator, pctStyled, bar, icon, nameCell, sizeStyled,
	)

	// Ensure exactly totalWidth visual chars (pad or don't exceed)
	row = style.FullWidth(row, totalWidth)

	if selected {
		return tv.Theme.SelectedRow.Width(totalWidth).Render(row)
	}
	return row
}

// EnsureVisible adjusts offset to keep cursor visible.
func (tv *TreeView) EnsureVisible() {
	contentHeight := tv.Layout.ContentHeight()
	if tv.Cursor < tv.Offset {
		tv.Offset = tv.Cursor
	}
	if tv.Cursor >= tv.Offset+contentHeight {
		tv.Offset = tv.Cursor - contentHeight + 1
	}
	if tv.Offset < 0 {
		tv.Offset = 0
	}
}
