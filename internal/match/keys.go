package match

import (
	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

// PrimaryShipmentKey is the tier-1 key of a shipment: invoice number +
// product + counterparty, all normalized. Empty when the shipment carries
// no invoice number yet.
func PrimaryShipmentKey(s *model.ShipmentRecord) string {
	return normalize.CompositeKey(
		normalize.DocNumber(s.InvoiceNumber),
		normalize.Key(s.Product),
		normalize.Key(s.Receiver),
	)
}

// SecondaryShipmentKey is the tier-2 key of a shipment: tractor plate +
// product + counterparty.
func SecondaryShipmentKey(s *model.ShipmentRecord) string {
	return normalize.CompositeKey(
		normalize.Plate(s.Tractor),
		normalize.Key(s.Product),
		normalize.Key(s.Receiver),
	)
}

// PrimaryInvoiceKeys returns the tier-1 keys of an invoice (always at most
// one).
func PrimaryInvoiceKeys(inv *model.InvoiceRecord) []string {
	return []string{normalize.CompositeKey(
		normalize.DocNumber(inv.Number),
		normalize.Key(inv.Product),
		normalize.Key(inv.Counterparty),
	)}
}

// SecondaryInvoiceKeys returns one tier-2 key per plate on the invoice.
// Trucks show up under the tractor plate on some reports and under a
// trailer plate on others, so all three are indexed.
func SecondaryInvoiceKeys(inv *model.InvoiceRecord) []string {
	product := normalize.Key(inv.Product)
	counterparty := normalize.Key(inv.Counterparty)

	keys := make([]string, 0, 3)
	for _, plate := range []string{inv.Plate1, inv.Plate2, inv.Plate3} {
		if key := normalize.CompositeKey(normalize.Plate(plate), product, counterparty); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// DispatchShipmentKey is the coarse key used by the dispatch job to pair a
// scheduled leg with a freshly issued invoice: tractor plate + product.
// Empty when the leg has no plate assigned.
func DispatchShipmentKey(s *model.ShipmentRecord) string {
	return normalize.CompositeKey(
		normalize.Plate(s.Tractor),
		normalize.Key(s.Product),
	)
}

// DispatchInvoiceKeys mirrors DispatchShipmentKey on the invoice side.
func DispatchInvoiceKeys(inv *model.InvoiceRecord) []string {
	product := normalize.Key(inv.Product)

	keys := make([]string, 0, 3)
	for _, plate := range []string{inv.Plate1, inv.Plate2, inv.Plate3} {
		if key := normalize.CompositeKey(normalize.Plate(plate), product); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
