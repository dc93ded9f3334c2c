// Package tabular renders collected records as CSV or as a one-sheet XLSX
// workbook with identical cell content.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mbolis/survey-nest/model"
)

// Columns returns the union of all record keys in first-seen order.
// Records submitted against older versions of a form keep their columns,
// so exports may carry keys no current question produces.
func Columns(records []model.Record) []string {
	var columns []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	return columns
}

func CSV(records []model.Record) ([]byte, error) {
	columns := Columns(records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, errors.Wrap(err, "tabular: write header")
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			v, _ := rec.Get(col)
			row[i] = v.Cell()
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "tabular: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "tabular: flush")
	}
	return buf.Bytes(), nil
}

func XLSX(records []model.Record) ([]byte, error) {
	columns := Columns(records)

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return nil, errors.Wrap(err, "tabular: write header")
	}

	for n, rec := range records {
		row := make([]any, len(columns))
		for i, col := range columns {
			v, _ := rec.Get(col)
			row[i] = v.Cell()
		}
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", n+2), &row); err != nil {
			return nil, errors.Wrapf(err, "tabular: write row %d", n+1)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "tabular: write workbook")
	}
	return buf.Bytes(), nil
}
