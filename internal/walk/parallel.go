package walk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// streamBuffer smooths the producer/consumer handoff without letting the
// pipeline run far ahead of the consumer.
const streamBuffer = 128

// localWalker enumerates the local filesystem.
//
// Emission is strictly depth-first from a single driver goroutine, which
// keeps the ordering contract trivially true. Parallelism lives one level
// below: reading a directory and stat'ing its children runs on a worker
// pool, and the driver schedules every subdirectory of the listing it is
// currently draining before descending into the first one, so sibling
// directories are read concurrently while the consumer still sees an
// ordered stream.
type localWalker struct {
	opts Options
}

// NewLocalWalker returns a Walker over the local filesystem honoring the
// thread-count, sorting, and pruning options.
func NewLocalWalker(opts Options) Walker {
	return &localWalker{opts: opts}
}

// DeviceID follows symlinks so that a symlinked root like /tmp on macOS
// reports the device of its target.
func (w *localWalker) DeviceID(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return newMeta(info).Dev(), nil
}

func (w *localWalker) Walk(ctx context.Context, path string, rootDevice uint64) <-chan EntryResult {
	out := make(chan EntryResult, streamBuffer)
	go w.run(ctx, path, rootDevice, out)
	return out
}

// dirListing is the outcome of reading one directory: its children with
// metadata attached, or the read failure.
type dirListing struct {
	children []childEntry
	err      error
}

type childEntry struct {
	name    string
	path    string
	meta    Metadata
	metaErr error
}

type dirJob struct {
	path string
	// out is buffered so workers deliver without blocking and move on.
	out chan dirListing
}

func (w *localWalker) run(ctx context.Context, root string, rootDevice uint64, out chan<- EntryResult) {
	defer close(out)

	send := func(r EntryResult) bool {
		select {
		case out <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Stat (not Lstat) the root so a symlinked root is walked as the
	// directory it points at. Below the root, symlinks are never followed.
	info, err := os.Stat(root)
	if err != nil {
		send(EntryResult{Err: err})
		return
	}
	meta := newMeta(info)
	if !send(EntryResult{Entry: Entry{
		Path:   root,
		Name:   filepath.Base(root),
		Parent: filepath.Dir(root),
		Meta:   meta,
	}}) {
		return
	}
	if !meta.IsDir() {
		return
	}

	var jobs chan dirJob
	if workers := w.workers(); workers > 1 {
		jobs = make(chan dirJob)
		defer close(jobs)
		for i := 0; i < workers; i++ {
			go listWorker(ctx, jobs, w.opts.Sorting)
		}
	}

	schedule := func(path string) chan dirListing {
		res := make(chan dirListing, 1)
		if jobs == nil {
			// Serial mode: list inline on the driver goroutine.
			res <- listDir(path, w.opts.Sorting)
			return res
		}
		select {
		case jobs <- dirJob{path: path, out: res}:
		case <-ctx.Done():
			res <- dirListing{}
		}
		return res
	}

	w.descend(ctx, send, schedule, schedule(root), 1, root, rootDevice)
}

func (w *localWalker) workers() int {
	if w.opts.Threads == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return w.opts.Threads
}

// descend emits one directory's listing in order and recurses into each
// child directory before moving to the next sibling. It returns false once
// the consumer is gone.
func (w *localWalker) descend(ctx context.Context, send func(EntryResult) bool, schedule func(string) chan dirListing, res chan dirListing, depth int, parentPath string, rootDevice uint64) bool {
	var listing dirListing
	select {
	case listing = <-res:
	case <-ctx.Done():
		return false
	}
	if listing.err != nil {
		return send(EntryResult{Err: listing.err})
	}

	// Schedule every subdirectory before emitting anything, so their
	// listings are read while this one drains.
	sub := make([]chan dirListing, len(listing.children))
	for i, c := range listing.children {
		if c.meta != nil && c.meta.IsDir() && w.shouldDescend(c, rootDevice) {
			sub[i] = schedule(c.path)
		}
	}

	for i, c := range listing.children {
		if !send(EntryResult{Entry: Entry{
			Depth:   depth,
			Path:    c.path,
			Name:    c.name,
			Parent:  parentPath,
			Meta:    c.meta,
			MetaErr: c.metaErr,
		}}) {
			return false
		}
		if sub[i] == nil {
			continue
		}
		if !w.descend(ctx, send, schedule, sub[i], depth+1, c.path, rootDevice) {
			return false
		}
	}
	return true
}

// shouldDescend applies the pruning policy: stay on the root's device
// unless cross-filesystem traversal is enabled, and never enter ignored
// paths. Pruned directories still appear in the stream; only their
// contents are skipped.
func (w *localWalker) shouldDescend(c childEntry, rootDevice uint64) bool {
	if !w.opts.CrossFilesystems && c.meta.Dev() != rootDevice {
		return false
	}
	if len(w.opts.IgnoreDirs) > 0 {
		p := c.path
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, ok := w.opts.IgnoreDirs[p]; ok {
			return false
		}
	}
	return true
}

func listWorker(ctx context.Context, jobs <-chan dirJob, sorting Sorting) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			job.out <- listDir(job.path, sorting)
		case <-ctx.Done():
			return
		}
	}
}

// listDir reads one directory and lstats every entry. Children come back
// in on-disk order unless alphabetical sorting is requested.
func listDir(dir string, sorting Sorting) dirListing {
	f, err := os.Open(dir)
	if err != nil {
		return dirListing{err: err}
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return dirListing{err: err}
	}
	if sorting == SortAlphabetical {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	}

	children := make([]childEntry, 0, len(entries))
	for _, de := range entries {
		c := childEntry{name: de.Name(), path: filepath.Join(dir, de.Name())}
		// DirEntry.Info is lstat here: symlinks stay symlinks.
		info, err := de.Info()
		if err != nil {
			c.metaErr = err
		} else {
			c.meta = newMeta(info)
		}
		children = append(children, c)
	}
	return dirListing{children: children}
}
