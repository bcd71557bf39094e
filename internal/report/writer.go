package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

var divergenceHeader = []string{
	"Nota", "Produto", "Recebedor", "Placa", "Data Emissão", "Quantidade (L)", "Origem",
}

// WriteXLSX writes the divergence report, one invoice per row, replacing
// any previous report at path.
func WriteXLSX(path string, recs []model.InvoiceRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Divergências")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range divergenceHeader {
		header.AddCell().SetString(name)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.Number)
		row.AddCell().SetString(rec.Product)
		row.AddCell().SetString(rec.Counterparty)
		row.AddCell().SetString(rec.Plate1)
		row.AddCell().SetString(normalize.FormatDate(rec.IssueDate))
		row.AddCell().SetFloat(rec.Quantity)
		row.AddCell().SetString(rec.Source.File)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// AppendRunLog appends one run's match attempts to a csv log next to the
// report: one row per trip group with its plates, combined invoice numbers
// and outcome. A failed run still gets a trailing row so the gap is visible
// in the log.
func AppendRunLog(path string, at time.Time, attempts []Attempt, runErr error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "report: open run log %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	ts := at.Format(time.RFC3339)
	for _, a := range attempts {
		row := []string{ts, a.Group, strings.Join(a.Plates, ","), strings.Join(a.Invoices, ","), a.Outcome}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write run log")
		}
	}
	if runErr != nil {
		if err := w.Write([]string{ts, "", "", "", fmt.Sprintf("error: %v", runErr)}); err != nil {
			return eris.Wrap(err, "report: write run log")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "report: flush run log")
}
