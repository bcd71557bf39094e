package model

import "time"

// TripStatus represents the lifecycle state of a shipment row in the
// transport workbooks. The string values are the exact cell contents the
// planning team writes and reads, so they stay in Portuguese.
type TripStatus string

const (
	StatusScheduled      TripStatus = "PROGRAMADO"
	StatusInTransit      TripStatus = "EM TRÂNSITO"
	StatusAwaitingUnload TripStatus = "AGUARDANDO DESCARGA"
	StatusUnloaded       TripStatus = "DESCARREGADO"

	// Bypass variants behave like their base status for matching purposes.
	StatusInTransitBypass TripStatus = "EM TRÂNSITO BY PASS"
	StatusAwaitingBypass  TripStatus = "AGUARDANDO BY PASS"

	// StatusLegReleased marks a planned leg that was never covered by an
	// invoice after its trip group was reconciled.
	StatusLegReleased TripStatus = "PMM NÃO UTILIZADA"
)

// Base returns the status with any bypass variant collapsed to its
// underlying state.
func (s TripStatus) Base() TripStatus {
	switch s {
	case StatusInTransitBypass:
		return StatusInTransit
	case StatusAwaitingBypass:
		return StatusAwaitingUnload
	default:
		return s
	}
}

// MatchEligible reports whether the unload matcher may claim an invoice
// for this status. Scheduled legs belong to the dispatch pass; matching
// one here would burn an invoice on a row the status machine refuses to
// advance.
func (s TripStatus) MatchEligible() bool {
	switch s.Base() {
	case StatusInTransit, StatusAwaitingUnload:
		return true
	default:
		return false
	}
}

// ShipmentRecord is one planned or active truck trip read from a transport
// workbook. It is created externally, mutated in place by the reconciler
// (status and date columns only) and never deleted by this system.
type ShipmentRecord struct {
	TripID        string     `json:"trip_id"` // "SM" column, groups multi-leg trips
	ScheduledDate time.Time  `json:"scheduled_date"`
	Shipper       string     `json:"shipper"`
	OriginCity    string     `json:"origin_city"`
	OriginState   string     `json:"origin_state"`
	Buyer         string     `json:"buyer"`
	Consignee     string     `json:"consignee"`
	Receiver      string     `json:"receiver"` // counterparty used in match keys
	DestCity      string     `json:"dest_city"`
	DestState     string     `json:"dest_state"`
	Product       string     `json:"product"`
	Driver        string     `json:"driver"`
	Tractor       string     `json:"tractor"` // "cavalo" plate, the match plate
	Trailer1      string     `json:"trailer1"`
	Trailer2      string     `json:"trailer2"`
	Carrier       string     `json:"carrier"`
	InvoiceNumber string     `json:"invoice_number"`
	VolumeLiters  float64    `json:"volume_liters"`
	LoadingDate   time.Time  `json:"loading_date"`
	LoadingTime   string     `json:"loading_time"`
	ArrivalDate   time.Time  `json:"arrival_date"`
	UnloadDate    time.Time  `json:"unload_date"`
	Status        TripStatus `json:"status"`

	// Source locates the row in its workbook so updates can be written back.
	Source RowRef `json:"source"`
}

// InvoiceRecord is one issued fiscal document read from an invoice report.
// Once matched it is consumed and cannot match a second shipment in the same
// run; unconsumed records feed the divergence report.
type InvoiceRecord struct {
	Number       string    `json:"number"`
	Product      string    `json:"product"`
	Counterparty string    `json:"counterparty"`
	Plate1       string    `json:"plate1"`
	Plate2       string    `json:"plate2"`
	Plate3       string    `json:"plate3"`
	IssueDate    time.Time `json:"issue_date"`
	Quantity     float64   `json:"quantity"`
	LoadingTime  string    `json:"loading_time"`
	UnloadDate   time.Time `json:"unload_date"` // zero when the cargo is still on the road

	Source RowRef `json:"source"`
}

// RowRef points at a single row inside a workbook sheet. Row is the
// 1-based spreadsheet row number (header is row 1).
type RowRef struct {
	File  string `json:"file"`
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
}

// UpdateSet maps column names to the new values scheduled for one shipment
// row. It is applied by a sheet sink and not retried beyond the configured
// attempt count.
type UpdateSet struct {
	Target  RowRef         `json:"target"`
	Changes map[string]any `json:"changes"`
}
