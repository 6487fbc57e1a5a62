package mockapi

import (
	_ "embed"
	"encoding/csv"
	"io"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed units.csv
var unitsCSV string

type csvRecord[T any] struct {
	Value T
	Error error
}

// parseCSV yields one decoded value per row, stopping after the first error.
func parseCSV[T any](r io.Reader, skipHeader bool, fromCSV func(record []string) (T, error)) iter.Seq[csvRecord[T]] {
	return func(yield func(csvRecord[T]) bool) {
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true

		for line := 1; ; line++ {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(csvRecord[T]{Error: errors.Wrapf(err, "line %d", line)})
				return
			}
			if skipHeader && line == 1 {
				continue
			}

			value, err := fromCSV(record)
			if err != nil {
				yield(csvRecord[T]{Error: errors.Wrapf(err, "line %d", line)})
				return
			}
			if !yield(csvRecord[T]{Value: value}) {
				return
			}
		}
	}
}

func unitFromCSV(record []string) (map[string]any, error) {
	if len(record) != 2 || record[0] == "" || record[1] == "" {
		return nil, errors.Newf("expected name and symbol, got %q", record)
	}
	return map[string]any{"name": record[0], "symbol": record[1]}, nil
}

// seedUnits returns the units of measure every fresh server starts with.
func seedUnits() ([]map[string]any, error) {
	units := make([]map[string]any, 0, 16)
	for record := range parseCSV(strings.NewReader(unitsCSV), true, unitFromCSV) {
		if record.Error != nil {
			return nil, errors.Wrap(record.Error, "failed to load units of measure")
		}
		units = append(units, record.Value)
	}
	return units, nil
}
