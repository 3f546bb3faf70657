// Package util holds small formatting helpers shared by the CLI and UI.
package util

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteFormat selects how byte quantities are rendered: scaled to the
// nearest metric or binary unit, as a plain grouped byte count, or pinned
// to one fixed unit.
type ByteFormat int

const (
	FormatMetric ByteFormat = iota
	FormatBinary
	FormatBytes
	FormatGB
	FormatGiB
	FormatMB
	FormatMiB
)

var (
	metricUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	binaryUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
)

// ParseByteFormat maps a user-supplied name onto a ByteFormat. Matching is
// case-insensitive.
func ParseByteFormat(s string) (ByteFormat, error) {
	switch strings.ToLower(s) {
	case "metric":
		return FormatMetric, nil
	case "binary":
		return FormatBinary, nil
	case "bytes":
		return FormatBytes, nil
	case "gb":
		return FormatGB, nil
	case "gib":
		return FormatGiB, nil
	case "mb":
		return FormatMB, nil
	case "mib":
		return FormatMiB, nil
	}
	return 0, fmt.Errorf("unknown byte format %q, expected one of metric, binary, bytes, GB, GiB, MB, MiB", s)
}

func (f ByteFormat) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatBytes:
		return "bytes"
	case FormatGB:
		return "GB"
	case FormatGiB:
		return "GiB"
	case FormatMB:
		return "MB"
	case FormatMiB:
		return "MiB"
	default:
		return "metric"
	}
}

// Format renders a byte quantity in this format.
func (f ByteFormat) Format(bytes uint64) string {
	b := float64(bytes)
	switch f {
	case FormatBinary:
		return formatScaled(bytes, 1024, binaryUnits)
	case FormatBytes:
		return humanize.Comma(int64(bytes)) + " B"
	case FormatGB:
		return fmt.Sprintf("%.2f GB", b/1e9)
	case FormatGiB:
		return fmt.Sprintf("%.2f GiB", b/(1<<30))
	case FormatMB:
		return fmt.Sprintf("%.2f MB", b/1e6)
	case FormatMiB:
		return fmt.Sprintf("%.2f MiB", b/(1<<20))
	default:
		return formatScaled(bytes, 1000, metricUnits)
	}
}

func formatScaled(bytes uint64, step float64, units []string) string {
	b := float64(bytes)
	i := 0
	for b >= step && i < len(units)-1 {
		b /= step
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.2f %s", b, units[i])
}

// Width returns the column width right-aligned output of this format
// should reserve.
func (f ByteFormat) Width() int {
	switch f {
	case FormatBinary:
		return 12
	case FormatBytes:
		return 20
	case FormatGB, FormatGiB, FormatMB, FormatMiB:
		return 15
	default:
		return 11
	}
}

// Percent returns the percentage of part relative to total.
func Percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// TruncateString truncates a string to maxLen runes, adding "..." if needed.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
