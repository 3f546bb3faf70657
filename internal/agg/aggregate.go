// Package agg computes flat per-root disk usage totals without building a tree.
package agg

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mietkow/duwalk/internal/walk"
)

const progressInterval = 250 * time.Millisecond

// WalkResult accumulates the outcome of one invocation across all roots.
type WalkResult struct {
	NumRoots   int
	NumErrors  uint64
	TotalBytes uint64
}

// ExitCode maps the run onto a process exit status.
func (r WalkResult) ExitCode() int {
	if r.NumErrors > 0 {
		return 1
	}
	return 0
}

// Statistics describes the traversed entry population. EntriesTraversed
// counts every element the walker emits, unreadable listings included;
// smallest and largest cover non-directory entries only.
type Statistics struct {
	EntriesTraversed    uint64
	SmallestFileInBytes uint64
	LargestFileInBytes  uint64
}

// RootRecord is the per-root outcome, in input order unless sorted.
type RootRecord struct {
	Path   string
	Bytes  uint64
	Errors uint64
}

// Aggregate drains every root in order and returns the totals. Roots are
// processed strictly sequentially and the call always runs to completion;
// I/O failures degrade the affected entry to zero bytes and are counted,
// never returned. Progress lines are written to progress at a throttled
// rate; pass nil to disable them.
func Aggregate(progress io.Writer, walker walk.Walker, opts walk.Options, sortBySize bool, roots []string) (WalkResult, Statistics, []RootRecord) {
	res := WalkResult{NumRoots: len(roots)}
	stats := Statistics{SmallestFileInBytes: math.MaxUint64}
	records := make([]RootRecord, 0, len(roots))

	var throttle *walk.Throttle
	if progress != nil {
		throttle = walk.NewThrottle(progressInterval, progressInterval)
		defer throttle.Stop()
	}

	inodes := walk.NewInodeFilter()
	for _, root := range roots {
		var rootBytes, rootErrors uint64

		device, err := walker.DeviceID(root)
		if err != nil {
			res.NumErrors++
			records = append(records, RootRecord{Path: root, Errors: 1})
			continue
		}

		for r := range walker.Walk(context.Background(), root, device) {
			stats.EntriesTraversed++
			if throttle != nil {
				throttle.RunIfDue(func() {
					fmt.Fprintf(progress, "\rEnumerating %s entries", humanize.Comma(int64(stats.EntriesTraversed)))
				})
			}
			if r.Err != nil {
				rootErrors++
				continue
			}

			e := r.Entry
			if e.MetaErr != nil {
				rootErrors++
				continue
			}
			if e.Meta == nil || e.Meta.IsDir() {
				continue
			}

			size, err := walk.CountedSize(opts, inodes, device, e.Meta)
			if err != nil {
				rootErrors++
			}
			rootBytes += size
			if size > stats.LargestFileInBytes {
				stats.LargestFileInBytes = size
			}
			if size < stats.SmallestFileInBytes {
				stats.SmallestFileInBytes = size
			}
		}

		records = append(records, RootRecord{Path: root, Bytes: rootBytes, Errors: rootErrors})
		res.TotalBytes += rootBytes
		res.NumErrors += rootErrors
	}

	if stats.SmallestFileInBytes == math.MaxUint64 {
		stats.SmallestFileInBytes = 0
	}
	if sortBySize {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Bytes < records[j].Bytes
		})
	}
	return res, stats, records
}
