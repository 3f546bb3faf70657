package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/mietkow/duwalk/internal/tree"
)

// ImportJSON imports a tree from ncdu-compatible JSON. Gzip-compressed
// files are detected by their magic bytes, so a misnamed export still
// loads. Directory sizes are recomputed from their children rather than
// trusted from the file.
func ImportJSON(path string) (*tree.Traversal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("cannot decompress import file: %w", err)
		}
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress import file: %w", err)
		}
	}

	// Parse the top-level array: [version, minor, header, rootDir]
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if len(raw) < 4 {
		return nil, fmt.Errorf("invalid ncdu format: expected at least 4 elements, got %d", len(raw))
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw[3], &elements); err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("cannot parse root directory: empty directory array")
	}
	var rootEntry ncduEntry
	if err := json.Unmarshal(elements[0], &rootEntry); err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}

	t := tree.New(tree.EntryData{})
	imp := &importer{tree: t}

	var total uint64
	if rootEntry.Name == "" {
		// A multi-root export carries an unnamed top-level entry whose
		// children are the scanned roots; splice them directly under
		// our own root.
		total, err = imp.parseChildren(t.Root(), elements)
	} else {
		idx := t.AddNode(t.Root(), importedData(rootEntry))
		if rootEntry.Err {
			imp.ioErrors++
		}
		total, err = imp.parseChildren(idx, elements)
		t.Data(idx).Size = total
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}
	t.Data(t.Root()).Size = total

	return &tree.Traversal{
		Tree:             t,
		Root:             t.Root(),
		EntriesTraversed: uint64(t.Len() - 1),
		IOErrors:         imp.ioErrors,
		TotalBytes:       total,
	}, nil
}

type importer struct {
	tree     *tree.Tree[tree.EntryData]
	ioErrors uint64
}

// parseDir parses a directory array: [{dir_entry}, child1, child2, ...].
func (imp *importer) parseDir(parent tree.TreeIndex, data json.RawMessage) (uint64, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return 0, fmt.Errorf("directory is not an array: %w", err)
	}
	if len(elements) == 0 {
		return 0, fmt.Errorf("empty directory array")
	}

	var entry ncduEntry
	if err := json.Unmarshal(elements[0], &entry); err != nil {
		return 0, fmt.Errorf("cannot parse directory entry: %w", err)
	}
	idx := imp.tree.AddNode(parent, importedData(entry))
	if entry.Err {
		imp.ioErrors++
	}

	size, err := imp.parseChildren(idx, elements)
	if err != nil {
		return 0, err
	}
	imp.tree.Data(idx).Size = size
	return size, nil
}

// parseChildren parses elements[1:] into children of dir. Objects are
// files, arrays are subdirectories.
func (imp *importer) parseChildren(dir tree.TreeIndex, elements []json.RawMessage) (uint64, error) {
	var total uint64
	for i := 1; i < len(elements); i++ {
		trimmed := trimLeadingWhitespace(elements[i])
		if len(trimmed) == 0 {
			return 0, fmt.Errorf("unexpected child element at index %d", i)
		}

		switch trimmed[0] {
		case '[':
			size, err := imp.parseDir(dir, elements[i])
			if err != nil {
				return 0, err
			}
			total += size
		case '{':
			var entry ncduEntry
			if err := json.Unmarshal(elements[i], &entry); err != nil {
				return 0, fmt.Errorf("cannot parse file entry: %w", err)
			}
			imp.tree.AddNode(dir, importedData(entry))
			if entry.Err {
				imp.ioErrors++
			}
			total += clampSize(entry.Asize)
		default:
			return 0, fmt.Errorf("unexpected child element at index %d", i)
		}
	}
	return total, nil
}

func importedData(entry ncduEntry) tree.EntryData {
	d := tree.EntryData{
		Name:          entry.Name,
		Size:          clampSize(entry.Asize),
		MetadataError: entry.Err,
	}
	if entry.Mtime != 0 {
		d.Mtime = time.Unix(entry.Mtime, 0)
	}
	return d
}

func clampSize(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func trimLeadingWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return nil
}
