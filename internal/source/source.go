// Package source reads the tabular files an import run consumes.
//
// A Dir resolves entity source names against a data directory and
// materializes them as core.RecordSets. The first row of every file is the
// header; it becomes the record set's declared columns. Empty cells are
// emitted as nil so the core null rules apply uniformly.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/bulkload/internal/core"
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1000

// Dir reads sources from a directory on disk.
type Dir struct {
	Root string
}

// NewDir returns a reader rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Path returns the on-disk location of a source name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.Root, filepath.Clean("/"+name))
}

// Read implements core.SourceReader. The file format is chosen by
// extension: .xlsx/.xlsm via excelize, .csv via encoding/csv.
func (d *Dir) Read(ctx context.Context, name string) (core.RecordSet, error) {
	path := d.Path(name)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return core.RecordSet{}, fmt.Errorf("%s: %w", name, core.ErrSourceNotFound)
	}
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("stat %s: %w", name, err)
	}

	start := time.Now()
	var set core.RecordSet
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		set, err = readXLSX(ctx, path)
	case ".csv":
		set, err = readCSV(ctx, path)
	default:
		return core.RecordSet{}, fmt.Errorf("%s: unsupported file type %q", name, ext)
	}
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("read %s: %w", name, err)
	}

	slog.Debug("source read",
		"source", name,
		"columns", len(set.Columns),
		"records", set.Len(),
		"bytes", info.Size(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return set, nil
}

// headerNames normalizes a header row. Blank headers become "Unnamed: <i>"
// and repeated names get a ".<n>" suffix, so every column stays
// addressable.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = core.CleanCell(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

// buildRecord pairs a data row with the header. Missing trailing cells and
// blank cells become nil. ok is false for a row with no values at all.
func buildRecord(columns, row []string) (core.Record, bool) {
	values := make([]any, len(columns))
	nonEmpty := false
	for i := range columns {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		values[i] = cell
		nonEmpty = true
	}
	return core.NewRecord(columns, values), nonEmpty
}
