package sheet

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

// DecodeShipments turns positional transport rows into shipment records.
// Rows without a trip ID and without a plate are treated as padding and
// skipped silently; rows that have one but fail to decode are logged and
// skipped so one bad row never aborts a run. The rows slice is expected to
// start at workbook row skipRows+1.
func DecodeShipments(rows [][]string, layout Layout, file string, skipRows int) []model.ShipmentRecord {
	records := make([]model.ShipmentRecord, 0, len(rows))

	for i, row := range rows {
		ref := model.RowRef{File: file, Sheet: layout.Sheet, Row: skipRows + i + 1}

		get := func(key string) string {
			pos, ok := layout.Col(key)
			if !ok || pos >= len(row) {
				return ""
			}
			return row[pos]
		}

		tripID := normalize.Text(get(model.ColTripID))
		tractor := normalize.Plate(get(model.ColTractor))
		if tripID == "" && tractor == "" {
			continue
		}

		records = append(records, model.ShipmentRecord{
			TripID:        tripID,
			ScheduledDate: normalize.ParseDate(get(model.ColScheduledDate)),
			Shipper:       normalize.Text(get(model.ColShipper)),
			OriginCity:    normalize.Text(get(model.ColOriginCity)),
			OriginState:   normalize.Text(get(model.ColOriginState)),
			Buyer:         normalize.Text(get(model.ColBuyer)),
			Consignee:     normalize.Text(get(model.ColConsignee)),
			Receiver:      normalize.Text(get(model.ColReceiver)),
			DestCity:      normalize.Text(get(model.ColDestCity)),
			DestState:     normalize.Text(get(model.ColDestState)),
			Product:       normalize.Text(get(model.ColProduct)),
			Driver:        normalize.Text(get(model.ColDriver)),
			Tractor:       tractor,
			Trailer1:      normalize.Plate(get(model.ColTrailer1)),
			Trailer2:      normalize.Plate(get(model.ColTrailer2)),
			Carrier:       normalize.Text(get(model.ColCarrier)),
			InvoiceNumber: normalize.DocNumber(get(model.ColInvoiceNumber)),
			VolumeLiters:  normalize.ParseVolume(get(model.ColVolume)),
			LoadingDate:   normalize.ParseDate(get(model.ColLoadingDate)),
			LoadingTime:   normalize.Text(get(model.ColLoadingTime)),
			ArrivalDate:   normalize.ParseDate(get(model.ColArrivalDate)),
			UnloadDate:    normalize.ParseDate(get(model.ColUnloadDate)),
			Status:        parseStatus(get(model.ColStatus)),
			Source:        ref,
		})
	}

	return records
}

// parseStatus maps a raw status cell to its canonical form. Cells are
// hand-typed, so accents and spacing vary; comparison goes through the
// accent-free key. Unknown values pass through uppercased, which keeps them
// visible rather than silently reclassified.
func parseStatus(raw string) model.TripStatus {
	switch normalize.Key(raw) {
	case "":
		return ""
	case "PROGRAMADO":
		return model.StatusScheduled
	case "EMTRANSITO":
		return model.StatusInTransit
	case "AGUARDANDODESCARGA":
		return model.StatusAwaitingUnload
	case "DESCARREGADO":
		return model.StatusUnloaded
	case "EMTRANSITOBYPASS":
		return model.StatusInTransitBypass
	case "AGUARDANDOBYPASS":
		return model.StatusAwaitingBypass
	case "PMMNAOUTILIZADA":
		return model.StatusLegReleased
	default:
		return model.TripStatus(normalize.Text(raw))
	}
}

// invoiceHeader maps the columns of an invoice report to positions. The
// reports come from two different issuers whose header names vary, so each
// field accepts a list of candidates.
type invoiceHeader struct {
	number, product, counterparty       int
	plate1, plate2, plate3              int
	issueDate, quantity                 int
	loadingTime, unloadDate, cancelFlag int
}

var headerCandidates = map[string][]string{
	"number":       {"numero", "número", "notas fiscais", "nota", "nf"},
	"product":      {"[item] descrição", "[item] descricao", "produto", "descrição do produto"},
	"counterparty": {"recebedor", "destinatário", "destinatario", "fonte padronizada", "cliente"},
	"plate1":       {"placa1", "placa do veículo", "placa do veiculo", "placa"},
	"plate2":       {"placa2"},
	"plate3":       {"placa3"},
	"issueDate":    {"data emissão", "data emissao", "data de emissão", "emissão", "data"},
	"quantity":     {"[item] quantidade", "quantidade_nf", "quantidade", "volume", "peso"},
	"loadingTime":  {"horario de carregamento", "horário de carregamento", "hora"},
	"unloadDate":   {"data_de_descarga", "data de descarga", "data descarga"},
	"cancelFlag":   {"situação", "situacao", "status"},
}

func resolveHeader(header []string) (invoiceHeader, error) {
	keys := make(map[string]int, len(header))
	for i, name := range header {
		k := normalize.Key(name)
		if _, seen := keys[k]; !seen {
			keys[k] = i
		}
	}

	find := func(field string) int {
		for _, cand := range headerCandidates[field] {
			if pos, ok := keys[normalize.Key(cand)]; ok {
				return pos
			}
		}
		return -1
	}

	h := invoiceHeader{
		number:       find("number"),
		product:      find("product"),
		counterparty: find("counterparty"),
		plate1:       find("plate1"),
		plate2:       find("plate2"),
		plate3:       find("plate3"),
		issueDate:    find("issueDate"),
		quantity:     find("quantity"),
		loadingTime:  find("loadingTime"),
		unloadDate:   find("unloadDate"),
		cancelFlag:   find("cancelFlag"),
	}

	if h.number < 0 || h.product < 0 || h.plate1 < 0 {
		return h, eris.Errorf("sheet: invoice header missing required columns (got %v)", header)
	}
	return h, nil
}

// DecodeInvoices turns an invoice report (header row first) into invoice
// records. Cancelled documents are dropped here so no downstream stage has
// to re-check them.
func DecodeInvoices(rows [][]string, file, sheetName string) ([]model.InvoiceRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("sheet: invoice report is empty")
	}

	h, err := resolveHeader(rows[0])
	if err != nil {
		return nil, err
	}

	get := func(row []string, pos int) string {
		if pos < 0 || pos >= len(row) {
			return ""
		}
		return row[pos]
	}

	records := make([]model.InvoiceRecord, 0, len(rows)-1)
	cancelled := 0
	for i, row := range rows[1:] {
		number := normalize.DocNumber(get(row, h.number))
		if number == "" {
			continue
		}
		if normalize.Text(get(row, h.cancelFlag)) == "CANCELAMENTO" {
			cancelled++
			continue
		}

		records = append(records, model.InvoiceRecord{
			Number:       number,
			Product:      normalize.Text(get(row, h.product)),
			Counterparty: normalize.Text(get(row, h.counterparty)),
			Plate1:       normalize.Plate(get(row, h.plate1)),
			Plate2:       normalize.Plate(get(row, h.plate2)),
			Plate3:       normalize.Plate(get(row, h.plate3)),
			IssueDate:    normalize.ParseDate(get(row, h.issueDate)),
			Quantity:     normalize.ParseVolume(get(row, h.quantity)),
			LoadingTime:  normalize.Text(get(row, h.loadingTime)),
			UnloadDate:   normalize.ParseDate(get(row, h.unloadDate)),
			Source:       model.RowRef{File: file, Sheet: sheetName, Row: i + 2},
		})
	}

	if cancelled > 0 {
		zap.S().Infow("dropped cancelled invoices", "file", file, "count", cancelled)
	}

	return records, nil
}
