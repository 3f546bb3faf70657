// Package walktest provides in-memory Walker and Metadata fakes so stream
// consumers can be exercised without touching a real filesystem.
package walktest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/mietkow/duwalk/internal/walk"
)

// Meta is a canned walk.Metadata. The zero value is an empty regular file
// on device 0 with a link count of 1.
type Meta struct {
	Dir    bool
	Device uint64
	Inode  uint64
	Links  uint64
	// Size backs both ApparentSize and SizeOnDisk unless Disk or DiskErr
	// overrides the latter.
	Size     uint64
	Disk     uint64
	DiskErr  error
	MTime    time.Time
	MTimeErr error // returned by Modified
}

func (m Meta) IsDir() bool {
	return m.Dir
}

func (m Meta) Dev() uint64 {
	return m.Device
}

func (m Meta) Ino() uint64 {
	return m.Inode
}

func (m Meta) Nlink() uint64 {
	if m.Links == 0 {
		return 1
	}
	return m.Links
}

func (m Meta) ApparentSize() uint64 {
	return m.Size
}

func (m Meta) SizeOnDisk() (uint64, error) {
	if m.DiskErr != nil {
		return 0, m.DiskErr
	}
	if m.Disk != 0 {
		return m.Disk, nil
	}
	return m.Size, nil
}

func (m Meta) Modified() (time.Time, error) {
	if m.MTimeErr != nil {
		return time.Time{}, m.MTimeErr
	}
	return m.MTime, nil
}

// Entry builds one stream element for path at the given depth.
func Entry(depth int, path string, m Meta) walk.EntryResult {
	return walk.EntryResult{Entry: walk.Entry{
		Depth:  depth,
		Path:   path,
		Name:   filepath.Base(path),
		Parent: filepath.Dir(path),
		Meta:   m,
	}}
}

// File is Entry with Dir forced off.
func File(depth int, path string, m Meta) walk.EntryResult {
	m.Dir = false
	return Entry(depth, path, m)
}

// Dir is Entry with Dir forced on.
func Dir(depth int, path string, m Meta) walk.EntryResult {
	m.Dir = true
	return Entry(depth, path, m)
}

// StatError builds an entry whose metadata lookup failed.
func StatError(depth int, path string, err error) walk.EntryResult {
	r := Entry(depth, path, Meta{})
	r.Entry.Meta = nil
	r.Entry.MetaErr = err
	return r
}

// ReadError builds a directory-enumeration failure element.
func ReadError(err error) walk.EntryResult {
	return walk.EntryResult{Err: err}
}

// Walker replays canned entry streams keyed by root path.
type Walker struct {
	// Devices maps a root to its device id; absent roots resolve to 0.
	Devices map[string]uint64
	// DeviceErrs makes DeviceID fail for a root.
	DeviceErrs map[string]error
	// Streams holds the exact elements Walk yields per root.
	Streams map[string][]walk.EntryResult
}

func (w *Walker) DeviceID(path string) (uint64, error) {
	if err := w.DeviceErrs[path]; err != nil {
		return 0, err
	}
	return w.Devices[path], nil
}

func (w *Walker) Walk(ctx context.Context, path string, rootDevice uint64) <-chan walk.EntryResult {
	out := make(chan walk.EntryResult)
	go func() {
		defer close(out)
		for _, r := range w.Streams[path] {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
