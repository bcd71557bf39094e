package match

import (
	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

// Transition computes the status a matched shipment moves to. The decision
// is a function of whether the invoice carries an unload date: absent means
// the truck arrived and is queueing, present means the cargo is off the
// truck. The zero return means no transition applies (already there, or the
// shipment is in a state this matcher does not advance).
func Transition(current model.TripStatus, inv *model.InvoiceRecord) (model.TripStatus, bool) {
	next := model.StatusAwaitingUnload
	if !inv.UnloadDate.IsZero() {
		next = model.StatusUnloaded
	}

	switch current.Base() {
	case model.StatusInTransit:
		// InTransit advances to either state; a single report row can
		// carry both arrival and unload.
		return next, true
	case model.StatusAwaitingUnload:
		if next == model.StatusUnloaded {
			return next, true
		}
	}
	return "", false
}

// UnloadUpdates builds the UpdateSet for a shipment advancing to next. The
// arrival date always comes from the invoice issue date; the unload date is
// copied only when the shipment actually unloaded.
func UnloadUpdates(s *model.ShipmentRecord, inv *model.InvoiceRecord, next model.TripStatus) model.UpdateSet {
	changes := map[string]any{
		model.ColStatus:      string(next),
		model.ColArrivalDate: normalize.FormatDate(inv.IssueDate),
	}
	if next == model.StatusUnloaded {
		changes[model.ColUnloadDate] = normalize.FormatDate(inv.UnloadDate)
	}
	return model.UpdateSet{Target: s.Source, Changes: changes}
}

// DispatchUpdates builds the UpdateSet that moves a scheduled leg into
// transit, copying the invoice identity and cargo figures onto the row.
func DispatchUpdates(s *model.ShipmentRecord, inv *model.InvoiceRecord) model.UpdateSet {
	loadingTime := inv.LoadingTime
	if loadingTime == "" {
		// The loading order is issued after the invoice; flag it pending
		// the way the planning team expects.
		loadingTime = "Pend. OC."
	}
	return model.UpdateSet{
		Target: s.Source,
		Changes: map[string]any{
			model.ColStatus:        string(model.StatusInTransit),
			model.ColInvoiceNumber: normalize.DocNumber(inv.Number),
			model.ColVolume:        inv.Quantity,
			model.ColLoadingDate:   normalize.FormatDate(inv.IssueDate),
			model.ColLoadingTime:   loadingTime,
		},
	}
}

// ReleaseUpdates marks a planned leg that its trip group left uncovered.
func ReleaseUpdates(s *model.ShipmentRecord) model.UpdateSet {
	return model.UpdateSet{
		Target:  s.Source,
		Changes: map[string]any{model.ColStatus: string(model.StatusLegReleased)},
	}
}
