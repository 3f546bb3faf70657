package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
)

// CategoryStats holds aggregated stats for a file category.
type CategoryStats struct {
	Category  tree.FileCategory
	FileCount uint64
	TotalSize uint64
	TopExts   map[string]uint64
}

// ftCache caches the last aggregation to avoid recomputing on every render.
// A rescan produces a new tree, which changes the key on its own.
type ftCache struct {
	tree       *tree.Tree[tree.EntryData]
	dir        tree.TreeIndex
	showHidden bool
	stats      []CategoryStats
}

var lastFTCache ftCache

// RenderFileTypes renders the file type breakdown view.
func RenderFileTypes(theme style.Theme, t *tree.Tree[tree.EntryData], dir tree.TreeIndex, showHidden bool, format util.ByteFormat, width, height int) string {
	if t == nil {
		return ""
	}

	var stats []CategoryStats
	if lastFTCache.tree == t && lastFTCache.dir == dir && lastFTCache.showHidden == showHidden {
		stats = lastFTCache.stats
	} else {
		stats = aggregateFileTypes(t, dir, showHidden)
		lastFTCache = ftCache{tree: t, dir: dir, showHidden: showHidden, stats: stats}
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalSize > stats[j].TotalSize
	})

	var totalSize uint64
	for _, s := range stats {
		totalSize += s.TotalSize
	}

	if totalSize == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.TextMuted).
			Render("  (no files found)")
	}

	catW := 14
	countW := 10
	sizeW := format.Width()
	barW := width - catW - countW - sizeW - 10
	if barW < 10 {
		barW = 10
	}
	if barW > 30 {
		barW = 30
	}

	var lines []string

	hdrStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary)
	header := fmt.Sprintf("  %-*s %*s %*s  %s",
		catW, "Category",
		countW, "Files",
		sizeW, "Size",
		"Distribution",
	)
	lines = append(lines, hdrStyle.Render(header))

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  " + strings.Repeat("-", max(width-4, 0)))
	lines = append(lines, sep)

	for _, s := range stats {
		pct := util.Percent(s.TotalSize, totalSize)
		ratio := pct / 100.0

		catColor := lipgloss.Color(tree.CategoryColor(s.Category))
		catName := lipgloss.NewStyle().Foreground(catColor).Bold(true).Width(catW).Render(tree.CategoryName(s.Category))
		count := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(countW).Align(lipgloss.Right).Render(humanize.Comma(int64(s.FileCount)))
		size := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(sizeW).Align(lipgloss.Right).Render(format.Format(s.TotalSize))

		bar := renderCategoryBar(barW, ratio, catColor, theme.TextMuted)
		pctStr := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(fmt.Sprintf(" %5.1f%%", pct))

		row := fmt.Sprintf("  %s %s %s  %s%s", catName, count, size, bar, pctStr)
		lines = append(lines, row)

		topExts := getTopExtensions(s.TopExts, 3, format)
		if len(topExts) > 0 {
			extStr := lipgloss.NewStyle().Foreground(theme.TextMuted).
				Render("    " + strings.Join(topExts, ", "))
			lines = append(lines, extStr)
		}
	}

	lines = append(lines, sep)

	totalLine := fmt.Sprintf("  %-*s %*s %*s",
		catW, "Total",
		countW, "",
		sizeW, format.Format(totalSize),
	)
	lines = append(lines, hdrStyle.Render(totalLine))

	for len(lines) < height {
		lines = append(lines, "")
	}

	// Apply explicit background to every line so treemap colors don't bleed through.
	bgStyle := lipgloss.NewStyle().
		Background(theme.BgDark).
		Width(width)
	for i := range lines[:height] {
		lines[i] = bgStyle.Render(lines[i])
	}

	return strings.Join(lines[:height], "\n")
}

func aggregateFileTypes(t *tree.Tree[tree.EntryData], dir tree.TreeIndex, showHidden bool) []CategoryStats {
	catMap := make(map[tree.FileCategory]*CategoryStats)

	var walk func(tree.TreeIndex)
	walk = func(d tree.TreeIndex) {
		for _, child := range t.Children(d) {
			name := t.Data(child).Name
			if !showHidden && len(name) > 0 && name[0] == '.' {
				continue
			}
			if len(t.Children(child)) > 0 {
				walk(child)
			} else {
				cat := tree.ClassifyFile(name)
				ext := tree.GetExtension(name)

				st, ok := catMap[cat]
				if !ok {
					st = &CategoryStats{
						Category: cat,
						TopExts:  make(map[string]uint64),
					}
					catMap[cat] = st
				}
				st.FileCount++
				st.TotalSize += t.Data(child).Size
				if ext != "" {
					st.TopExts[ext] += t.Data(child).Size
				}
			}
		}
	}

	walk(dir)

	result := make([]CategoryStats, 0, len(catMap))
	for _, s := range catMap {
		result = append(result, *s)
	}
	return result
}

func getTopExtensions(exts map[string]uint64, n int, format util.ByteFormat) []string {
	type extEntry struct {
		ext  string
		size uint64
	}
	var entries []extEntry
	for ext, size := range exts {
		entries = append(entries, extEntry{ext, size})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].size > entries[j].size
	})

	var result []string
	for i := 0; i < n && i < len(entries); i++ {
		result = append(result, fmt.Sprintf("%s (%s)", entries[i].ext, format.Format(entries[i].size)))
	}
	return result
}

func renderCategoryBar(width int, ratio float64, color, dimColor lipgloss.Color) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}

	var buf strings.Builder
	filledStyle := lipgloss.NewStyle().Foreground(color)
	dimStyle := lipgloss.NewStyle().Foreground(dimColor)

	for i := 0; i < filled; i++ {
		buf.WriteString(filledStyle.Render("="))
	}
	for i := filled; i < width; i++ {
		buf.WriteString(dimStyle.Render("-"))
	}
	return buf.String()
}
