package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mietkow/duwalk/internal/ui/style"
)

// ScanProgress is a snapshot of a running scan, taken by the app from the
// build callback and handed to the overlay on every tick.
type ScanProgress struct {
	Entries uint64
	Errors  uint64
	Elapsed time.Duration
}

// Rate returns entries per second over the whole scan so far.
func (p ScanProgress) Rate() float64 {
	secs := p.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(p.Entries) / secs
}

// RenderScanProgress renders the scanning progress overlay.
func RenderScanProgress(theme style.Theme, progress ScanProgress, width, height int) string {
	boxWidth := 50
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render("  Scanning...")

	lines = append(lines, title)
	lines = append(lines, "")

	entriesLine := fmt.Sprintf("  Entries: %s", humanize.Comma(int64(progress.Entries)))
	speedLine := fmt.Sprintf("  Speed:   %s items/s", humanize.Comma(int64(progress.Rate())))

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines, statStyle.Render(entriesLine))
	lines = append(lines, statStyle.Render(speedLine))

	if progress.Errors > 0 {
		errLine := fmt.Sprintf("  Errors:  %d", progress.Errors)
		lines = append(lines, theme.ErrorText.Render(errLine))
	}

	lines = append(lines, "")

	elapsed := fmt.Sprintf("  Elapsed: %.1fs", progress.Elapsed.Seconds())
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(elapsed))

	content := strings.Join(lines, "\n")

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
