package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/JonMunkholm/bulkload/internal/core"
)

func readCSV(ctx context.Context, path string) (core.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.RecordSet{}, err
	}
	defer f.Close()

	return parseCSV(ctx, f)
}

// parseCSV reads a header row and data rows from r. Windows exports often
// carry a BOM or stray Latin-1 bytes; both are cleaned on the fly.
func parseCSV(ctx context.Context, r io.Reader) (core.RecordSet, error) {
	cr := csv.NewReader(newUTF8Sanitizer(newBOMSkipper(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var set core.RecordSet
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return core.RecordSet{}, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.RecordSet{}, err
		}

		if set.Columns == nil {
			set.Columns = headerNames(row)
			continue
		}
		if rec, ok := buildRecord(set.Columns, row); ok {
			set.Records = append(set.Records, rec)
		}
	}
	return set, nil
}
