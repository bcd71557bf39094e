package sheet

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV reader. Fuel-terminal exports use ';' as
// the field separator, so that is the default here.
type CSVOptions struct {
	Delimiter rune // default ';'
	SkipRows  int  // number of header rows to skip
	TrimSpace bool
}

// ReadCSV reads a delimited file and returns all rows as string slices.
func ReadCSV(path string, opts CSVOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	i := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for j, field := range record {
				record[j] = strings.TrimSpace(field)
			}
		}

		if i < opts.SkipRows {
			i++
			continue
		}
		i++

		rows = append(rows, record)
	}
}
