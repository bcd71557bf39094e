package sheet

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
)

// transportSkipRows is the number of header rows above the data in the
// transport workbooks.
const transportSkipRows = 1

// ReadTransportWorkbook reads one transport workbook into shipment records.
// RowRefs carry the full path so a sink can write updates back to the same
// file.
func ReadTransportWorkbook(path string, layout Layout) ([]model.ShipmentRecord, error) {
	rows, err := ReadXLSX(path, XLSXOptions{SheetName: layout.Sheet, SkipRows: transportSkipRows})
	if err != nil {
		return nil, err
	}

	records := DecodeShipments(rows, layout, path, transportSkipRows)
	zap.S().Infow("read transport workbook",
		"file", filepath.Base(path), "rows", len(rows), "records", len(records))
	return records, nil
}

// ReadInvoiceReport reads an issued-invoice report. Reports arrive either as
// xlsx exports or as ';'-delimited csv, decided by extension.
func ReadInvoiceReport(path string) ([]model.InvoiceRecord, error) {
	var (
		rows      [][]string
		sheetName string
		err       error
	)

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = ReadCSV(path, CSVOptions{TrimSpace: true})
	} else {
		rows, err = ReadXLSX(path, XLSXOptions{SheetIndex: 0})
		sheetName = "Sheet1"
	}
	if err != nil {
		return nil, err
	}

	records, err := DecodeInvoices(rows, path, sheetName)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("read invoice report",
		"file", filepath.Base(path), "records", len(records))
	return records, nil
}
