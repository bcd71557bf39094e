// Package sheet owns all workbook I/O: the column-layout contract, xlsx and
// csv reading, row decoding into domain records and the write-back sink
// that applies UpdateSets.
package sheet

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/petrosul/recon-cli/internal/model"
)

// Layout is the ordered column contract of a transport sheet. Workbook
// access is positional; the layout file is the one owned, versioned record
// of that order instead of an implicit convention.
type Layout struct {
	Sheet   string   `yaml:"sheet"`
	Columns []string `yaml:"columns"`

	index map[string]int
}

// DefaultTransportLayout returns the layout of the fitplan transport
// workbooks as shipped.
func DefaultTransportLayout() Layout {
	l := Layout{
		Sheet:   "Base",
		Columns: append([]string(nil), model.TransportColumns...),
	}
	l.buildIndex()
	return l
}

// LoadLayout reads a layout override from a YAML file.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, eris.Wrap(err, "layout: read file")
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, eris.Wrap(err, "layout: unmarshal")
	}
	if len(l.Columns) == 0 {
		return Layout{}, eris.New("layout: no columns defined")
	}
	if l.Sheet == "" {
		l.Sheet = "Base"
	}
	l.buildIndex()
	return l, nil
}

func (l *Layout) buildIndex() {
	l.index = make(map[string]int, len(l.Columns))
	for i, col := range l.Columns {
		l.index[col] = i
	}
}

// Col returns the 0-based position of a column key.
func (l Layout) Col(key string) (int, bool) {
	i, ok := l.index[key]
	return i, ok
}

// ColLetter converts a column key to its spreadsheet letter ("A", "B", ...,
// "AA") for log messages.
func (l Layout) ColLetter(key string) (string, bool) {
	i, ok := l.index[key]
	if !ok {
		return "", false
	}
	return columnLetter(i), true
}

func columnLetter(n int) string {
	result := ""
	for n >= 0 {
		result = string(rune('A'+n%26)) + result
		n = n/26 - 1
	}
	return result
}
