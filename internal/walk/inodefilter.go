package walk

// inodeKey uniquely identifies a file across filesystems using both device
// and inode number. Inode alone can collide across mounts.
type inodeKey struct {
	dev uint64
	ino uint64
}

// InodeFilter remembers which multi-link inodes have already been counted,
// so a hard-linked file contributes its size once per invocation. The zero
// value is ready to use. Entries are never removed; one filter is scoped to
// a single invocation and shared across its roots.
//
// Not safe for concurrent use: consumers drain the entry stream from a
// single goroutine.
type InodeFilter struct {
	seen map[inodeKey]struct{}
}

// NewInodeFilter returns an empty filter.
func NewInodeFilter() *InodeFilter {
	return &InodeFilter{seen: make(map[inodeKey]struct{}, 128)}
}

// Add records (dev, ino) and reports whether this is its first sighting.
// Entries with nlink <= 1 cannot alias another path and are always first.
func (f *InodeFilter) Add(dev, ino, nlink uint64) bool {
	if nlink <= 1 {
		return true
	}
	if f.seen == nil {
		f.seen = make(map[inodeKey]struct{}, 128)
	}
	key := inodeKey{dev: dev, ino: ino}
	if _, ok := f.seen[key]; ok {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}
