//go:build windows

package walk

import (
	"os"
	"time"
)

// fileMeta on Windows falls back to apparent size for disk usage.
// Device, inode, and hard-link detection are not supported, so the
// hard-link and cross-device gates never fire.
type fileMeta struct {
	info os.FileInfo
}

func newMeta(info os.FileInfo) Metadata {
	return fileMeta{info: info}
}

func (m fileMeta) IsDir() bool {
	return m.info.IsDir()
}

func (m fileMeta) Dev() uint64 {
	return 0
}

func (m fileMeta) Ino() uint64 {
	return 0
}

func (m fileMeta) Nlink() uint64 {
	return 1
}

func (m fileMeta) ApparentSize() uint64 {
	if sz := m.info.Size(); sz > 0 {
		return uint64(sz)
	}
	return 0
}

func (m fileMeta) SizeOnDisk() (uint64, error) {
	return m.ApparentSize(), nil
}

func (m fileMeta) Modified() (time.Time, error) {
	return m.info.ModTime(), nil
}
