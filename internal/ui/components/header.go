package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
)

// RenderHeader renders the top header bar: program title, the scanned
// path, and the entry/size totals right-aligned.
func RenderHeader(theme style.Theme, path string, entries, total uint64, format util.ByteFormat, width int) string {
	if width < 10 {
		return ""
	}

	titleStr := " duwalk"
	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(titleStr)

	stats := fmt.Sprintf("%s items  %s ",
		humanize.Comma(int64(entries)),
		format.Format(total),
	)
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	// Path gets whatever space remains
	pathMaxW := width - titleW - statsW - 3 // 3 for "  " separator + safety
	pathStr := path
	if pathMaxW > 5 {
		pathStr = util.TruncateString(pathStr, pathMaxW)
	} else {
		pathStr = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + pathStr)
	pathW := lipgloss.Width(pathStyled)

	gap := width - titleW - pathW - statsW
	if gap < 1 {
		gap = 1
	}

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderBreadcrumb renders the path from the tree root down to the
// directory being listed. The unnamed root of a multi-root scan shows
// as "/".
func RenderBreadcrumb(theme style.Theme, t *tree.Tree[tree.EntryData], current tree.TreeIndex, width int) string {
	if t == nil {
		return ""
	}

	var segments []string
	node := current
	for {
		name := t.Data(node).Name
		parent, ok := t.Parent(node)
		if !ok && name == "" {
			name = "/"
		}
		segments = append([]string{name}, segments...)
		if !ok {
			break
		}
		node = parent
	}

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" > ")
	var parts []string
	for i, seg := range segments {
		s := lipgloss.NewStyle().Foreground(theme.TextMuted)
		if i == len(segments)-1 {
			s = lipgloss.NewStyle().Foreground(theme.TextPrimary).Bold(true)
		}
		parts = append(parts, s.Render(seg))
	}

	breadcrumb := " " + strings.Join(parts, sep)

	// Truncate if too wide
	if lipgloss.Width(breadcrumb) > width {
		// Show just the last 2 segments
		if len(parts) > 2 {
			ellipsis := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("...")
			breadcrumb = " " + ellipsis + sep + strings.Join(parts[len(parts)-2:], sep)
		}
	}

	return theme.BreadcrumbStyle.Width(width).Render(breadcrumb)
}
