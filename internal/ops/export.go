// Package ops implements ncdu-compatible JSON export and import of scan
// results.
package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/mietkow/duwalk/internal/tree"
)

// ncdu-compatible JSON format:
// [1, 0, {"progname":"duwalk","progver":"1.0","timestamp":1234567890},
//   [{"name":"/path","asize":123,"dsize":123},
//     {"name":"file1","asize":10,"dsize":10},
//     [{"name":"subdir","asize":30,"dsize":30},
//       {"name":"file2","asize":5,"dsize":5}
//     ]
//   ]
// ]
//
// Only one size is tracked per node, so asize and dsize carry the same
// counted value. A multi-root scan exports its synthetic root with an
// empty name; the importer recognizes that form and splices the roots
// back under its own synthetic root.

type ncduHeader struct {
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
}

type ncduEntry struct {
	Name  string `json:"name"`
	Asize int64  `json:"asize"`
	Dsize int64  `json:"dsize,omitempty"`
	Mtime int64  `json:"mtime,omitempty"`
	Err   bool   `json:"read_error,omitempty"`
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, avoiding verbose per-call
// checks.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// ExportJSON exports the traversal to ncdu-compatible JSON. "-" writes to
// stdout; a path ending in .gz is gzip-compressed. For file targets the
// output goes to a temp file first and is atomically renamed on success,
// so a partial file is never left behind on error.
func ExportJSON(tr *tree.Traversal, path string, version string) (retErr error) {
	if path == "-" {
		return exportToWriter(tr, os.Stdout, false, version)
	}
	gzipped := strings.HasSuffix(path, ".gz")

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".duwalk-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := exportToWriter(tr, tmp, gzipped, version); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportToWriter(tr *tree.Traversal, out io.Writer, gzipped bool, version string) error {
	bw := bufio.NewWriterSize(out, 64*1024)
	var (
		w  io.Writer = bw
		gz *gzip.Writer
	)
	if gzipped {
		gz = gzip.NewWriter(bw)
		w = gz
	}
	ew := &errWriter{w: w}

	ew.WriteString("[1, 0, ")
	if version == "" {
		version = "dev"
	}
	header := ncduHeader{
		Progname:  "duwalk",
		Progver:   version,
		Timestamp: time.Now().Unix(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, _ = ew.Write(headerJSON)
	ew.WriteString(",\n")

	writeTree(ew, tr.Tree, exportRoot(tr))

	ew.WriteString("\n]\n")
	if ew.err != nil {
		return ew.err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// exportRoot picks the node exported as the ncdu root: the single scanned
// root when there is exactly one and it is a directory, the synthetic root
// otherwise.
func exportRoot(tr *tree.Traversal) tree.TreeIndex {
	roots := tr.Tree.Children(tr.Root)
	if len(roots) == 1 && len(tr.Tree.Children(roots[0])) > 0 {
		return roots[0]
	}
	return tr.Root
}

func writeTree(ew *errWriter, t *tree.Tree[tree.EntryData], idx tree.TreeIndex) {
	if ew.err != nil {
		return
	}

	ew.WriteString("[")
	writeEntry(ew, t.Data(idx))

	for _, c := range t.Children(idx) {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")
		if len(t.Children(c)) > 0 {
			writeTree(ew, t, c)
		} else {
			writeEntry(ew, t.Data(c))
		}
	}

	ew.WriteString("]")
}

func writeEntry(ew *errWriter, d *tree.EntryData) {
	entry := ncduEntry{
		Name:  d.Name,
		Asize: int64(d.Size),
		Dsize: int64(d.Size),
	}
	if !d.Mtime.IsZero() {
		entry.Mtime = d.Mtime.Unix()
	}
	if d.MetadataError {
		entry.Err = true
	}
	data, err := json.Marshal(entry)
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)
}
