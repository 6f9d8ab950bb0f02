// Package fetcher reads tabular company data from local CSV and XLSX
// exports and converts value grids into raw rows for the pipeline.
package fetcher

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a CSV file and returns all rows as string slices,
// including the header row. Rows may have varying field counts; the
// row conversion layer pads short rows.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}
	return rows, nil
}
