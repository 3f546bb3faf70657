package tree

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortField defines what to sort by.
type SortField int

const (
	SortBySize SortField = iota
	SortByName
	SortByMtime
)

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
	// DirsFirst keeps directories before files regardless of sort.
	DirsFirst bool
}

// DefaultSort returns the default sort config (size descending, dirs first).
func DefaultSort() SortConfig {
	return SortConfig{
		Field:     SortBySize,
		Order:     SortDesc,
		DirsFirst: true,
	}
}

// SortedChildren returns dir's children ordered according to cfg. The
// tree's own child order is left untouched. A node counts as a directory
// when it has children of its own.
func SortedChildren(t *Tree[EntryData], dir TreeIndex, cfg SortConfig) []TreeIndex {
	children := append([]TreeIndex(nil), t.Children(dir)...)
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]

		if cfg.DirsFirst {
			aDir, bDir := len(t.Children(a)) > 0, len(t.Children(b)) > 0
			if aDir != bDir {
				return aDir
			}
		}

		// Descending order swaps the operands; equal items still
		// compare false either way.
		if cfg.Order == SortDesc {
			a, b = b, a
		}

		da, db := t.Data(a), t.Data(b)
		switch cfg.Field {
		case SortByName:
			return natural.Less(strings.ToLower(da.Name), strings.ToLower(db.Name))
		case SortByMtime:
			return da.Mtime.Before(db.Mtime)
		default:
			return da.Size < db.Size
		}
	})
	return children
}
