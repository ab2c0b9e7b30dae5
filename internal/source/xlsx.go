package source

import (
	"context"
	"errors"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bulkload/internal/core"
)

// readXLSX streams the first worksheet. Cells are read raw, so dates come
// through as Excel serial numbers and numbers keep full precision; the
// mapper's coercions interpret them.
func readXLSX(ctx context.Context, path string) (core.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.RecordSet{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return core.RecordSet{}, errors.New("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return core.RecordSet{}, err
	}
	defer rows.Close()

	var set core.RecordSet
	header := true
	for n := 0; rows.Next(); n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return core.RecordSet{}, err
			}
		}

		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return core.RecordSet{}, err
		}

		if header {
			if len(cells) == 0 {
				continue
			}
			set.Columns = headerNames(cells)
			header = false
			continue
		}

		if rec, ok := buildRecord(set.Columns, cells); ok {
			set.Records = append(set.Records, rec)
		}
	}
	if err := rows.Error(); err != nil {
		return core.RecordSet{}, err
	}
	return set, nil
}
