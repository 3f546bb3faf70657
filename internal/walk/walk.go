// Package walk defines the directory enumeration contract shared by the
// local and remote walkers and by every consumer of the entry stream: the
// flat aggregator and the tree builders.
package walk

import (
	"context"
	"path/filepath"
	"time"

	"github.com/mietkow/duwalk/internal/util"
)

// Metadata exposes the filesystem facts one entry contributes to size
// accounting. Implementations wrap a platform stat result.
type Metadata interface {
	IsDir() bool
	// Dev identifies the device/volume containing the entry.
	Dev() uint64
	// Ino is the entry's inode number, unique per device.
	Ino() uint64
	// Nlink is the hard-link count.
	Nlink() uint64
	// ApparentSize is the logical file length in bytes.
	ApparentSize() uint64
	// SizeOnDisk is the physical space occupied, accounting for block
	// allocation and sparse regions.
	SizeOnDisk() (uint64, error)
	Modified() (time.Time, error)
}

// Entry is one filesystem object yielded by a walk.
type Entry struct {
	// Depth is 0 for a root itself, 1 for its direct children, and so on.
	Depth int
	// Path is the entry's path as joined from the root argument.
	Path string
	// Name is the base name.
	Name string
	// Parent is the path of the containing directory.
	Parent string
	// Meta is nil when the walker declined to stat the entry, which only
	// happens for directories. MetaErr is set when the stat was attempted
	// and failed; Meta is nil in that case too.
	Meta    Metadata
	MetaErr error
}

// EntryResult is one element of an enumeration stream: an entry, or a
// directory read failure. Err being set does not end the stream.
type EntryResult struct {
	Entry Entry
	Err   error
}

// Walker produces one depth-first entry stream per root.
//
// Contract: entries for one root are emitted in pre-order depth-first
// order, and a directory's descendants are fully emitted before any entry
// at the directory's own depth or shallower. Depth increases by at most
// one between consecutive entries. Consumers treat a violation as a
// programming defect and panic.
//
// The producer closes the channel when the root is drained or ctx is
// cancelled; sends always select on ctx.Done, so abandoning a stream after
// cancelling never leaks the producer.
type Walker interface {
	// DeviceID resolves the device containing path, following symlinks.
	DeviceID(path string) (uint64, error)
	Walk(ctx context.Context, path string, rootDevice uint64) <-chan EntryResult
}

// Sorting selects the emission order of one directory's entries.
type Sorting int

const (
	// SortNone emits entries in whatever order the filesystem returns them.
	SortNone Sorting = iota
	// SortAlphabetical orders each directory's entries by name.
	SortAlphabetical
)

// Options configures one walk invocation. Immutable for its duration.
type Options struct {
	// Threads is the enumeration parallelism: 0 sizes a pool by CPU count,
	// 1 forces fully serial enumeration, any other N uses N workers.
	Threads int
	// Format is the byte rendering consumers of this walk should use.
	Format util.ByteFormat
	// CountHardLinks counts every link to a multi-link inode instead of
	// only the first one seen.
	CountHardLinks bool
	// ApparentSize sums logical file lengths instead of disk allocation.
	ApparentSize bool
	Sorting      Sorting
	// CrossFilesystems descends into directories on other devices than the
	// root's.
	CrossFilesystems bool
	// IgnoreDirs holds absolute, cleaned paths that are never descended
	// into. Build it with NewIgnoreSet.
	IgnoreDirs map[string]struct{}
}

// NewIgnoreSet canonicalizes paths for Options.IgnoreDirs lookups.
func NewIgnoreSet(paths []string) map[string]struct{} {
	if len(paths) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		set[p] = struct{}{}
	}
	return set
}

// CountedSize is the shared size gate: it returns the bytes m contributes
// under the active accounting options. Directories contribute nothing.
// A multi-link inode contributes once per filter unless CountHardLinks is
// set, and entries on foreign devices contribute nothing unless
// CrossFilesystems is set. The error is non-nil only when a size-on-disk
// lookup failed; the returned size is 0 then.
//
// The hard-link check runs before the device check, so a skipped foreign
// entry still claims its inode. This keeps multi-root invocations stable:
// whichever link is seen first wins.
func CountedSize(opts Options, inodes *InodeFilter, rootDevice uint64, m Metadata) (uint64, error) {
	if m.IsDir() {
		return 0, nil
	}
	if !opts.CountHardLinks && !inodes.Add(m.Dev(), m.Ino(), m.Nlink()) {
		return 0, nil
	}
	if !opts.CrossFilesystems && m.Dev() != rootDevice {
		return 0, nil
	}
	if opts.ApparentSize {
		return m.ApparentSize(), nil
	}
	return m.SizeOnDisk()
}
