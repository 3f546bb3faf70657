//go:build !windows

package walk

import (
	"os"
	"syscall"
	"time"
)

// fileMeta adapts an os.FileInfo plus the platform stat to Metadata.
type fileMeta struct {
	info os.FileInfo
	sys  *syscall.Stat_t // nil when the platform stat is unavailable
}

func newMeta(info os.FileInfo) Metadata {
	m := fileMeta{info: info}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		m.sys = stat
	}
	return m
}

func (m fileMeta) IsDir() bool {
	return m.info.IsDir()
}

func (m fileMeta) Dev() uint64 {
	if m.sys == nil {
		return 0
	}
	return uint64(m.sys.Dev)
}

func (m fileMeta) Ino() uint64 {
	if m.sys == nil {
		return 0
	}
	return m.sys.Ino
}

func (m fileMeta) Nlink() uint64 {
	if m.sys == nil {
		return 1
	}
	return uint64(m.sys.Nlink)
}

func (m fileMeta) ApparentSize() uint64 {
	if sz := m.info.Size(); sz > 0 {
		return uint64(sz)
	}
	return 0
}

// SizeOnDisk reports allocated bytes. Stat blocks are 512-byte units
// regardless of the filesystem block size, so sparse files report less
// than their apparent size.
func (m fileMeta) SizeOnDisk() (uint64, error) {
	if m.sys == nil {
		return m.ApparentSize(), nil
	}
	if m.sys.Blocks < 0 {
		return 0, nil
	}
	return uint64(m.sys.Blocks) * 512, nil
}

func (m fileMeta) Modified() (time.Time, error) {
	return m.info.ModTime(), nil
}
