package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrosul/recon-cli/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func shipment(trip, invoice, product, plate, receiver string, status model.TripStatus) model.ShipmentRecord {
	return model.ShipmentRecord{
		TripID:        trip,
		InvoiceNumber: invoice,
		Product:       product,
		Tractor:       plate,
		Receiver:      receiver,
		Status:        status,
		LoadingDate:   day(10),
		Source:        model.RowRef{File: "fitplan.xlsx", Sheet: "Base", Row: 2},
	}
}

func invoice(number, product, counterparty, plate string, issued time.Time) model.InvoiceRecord {
	return model.InvoiceRecord{
		Number:       number,
		Product:      product,
		Counterparty: counterparty,
		Plate1:       plate,
		IssueDate:    issued,
	}
}

func TestReconcile_PrimaryTier(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransit),
	}
	invoices := []model.InvoiceRecord{
		// Trailing space and case differences must not matter.
		invoice("123", "Hidratado ", "acme", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, TierPrimary, out.Matches[0].Tier)
	assert.True(t, out.Consumed(0))
	assert.Empty(t, out.Unconsumed)
}

func TestReconcile_ConsumedInvoiceNeverMatchesTwice(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransit),
		shipment("SM2", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransit),
	}
	invoices := []model.InvoiceRecord{
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, 0, out.Matches[0].Shipment)
	assert.Equal(t, []int{1}, out.Unmatched)
}

func TestReconcile_SecondaryTierFallback(t *testing.T) {
	shipments := []model.ShipmentRecord{
		// No invoice number on the shipment: primary key is unusable.
		shipment("SM1", "", "DIESEL", "XYZ9876", "ACME", model.StatusInTransit),
	}
	invoices := []model.InvoiceRecord{
		invoice("555", "DIESEL", "ACME", "XYZ-9876", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, TierSecondary, out.Matches[0].Tier)
}

func TestReconcile_SecondaryRejectsEarlierIssueDate(t *testing.T) {
	s := shipment("SM1", "", "DIESEL", "XYZ9876", "ACME", model.StatusInTransit)
	s.LoadingDate = day(15)
	invoices := []model.InvoiceRecord{
		// Issued before loading: must not match.
		invoice("555", "DIESEL", "ACME", "XYZ9876", day(12)),
	}

	out, err := Reconciler{}.Reconcile([]model.ShipmentRecord{s}, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.Equal(t, []int{0}, out.Unmatched)
	assert.Equal(t, []int{0}, out.Unconsumed)
}

func TestReconcile_SecondaryAcceptsSameDay(t *testing.T) {
	s := shipment("SM1", "", "DIESEL", "XYZ9876", "ACME", model.StatusInTransit)
	s.LoadingDate = day(12)
	invoices := []model.InvoiceRecord{
		invoice("555", "DIESEL", "ACME", "XYZ9876", day(12)),
	}

	out, err := Reconciler{}.Reconcile([]model.ShipmentRecord{s}, invoices)
	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
}

func TestReconcile_SecondaryRequiresLoadingDate(t *testing.T) {
	s := shipment("SM1", "", "DIESEL", "XYZ9876", "ACME", model.StatusInTransit)
	s.LoadingDate = time.Time{}
	invoices := []model.InvoiceRecord{
		invoice("555", "DIESEL", "ACME", "XYZ9876", day(12)),
	}

	out, err := Reconciler{}.Reconcile([]model.ShipmentRecord{s}, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
}

func TestReconcile_ScheduledLegLeftToDispatch(t *testing.T) {
	shipments := []model.ShipmentRecord{
		// A scheduled leg already carrying the NF must not steal the
		// invoice from the in-transit row it belongs to.
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusScheduled),
		shipment("SM2", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransit),
	}
	invoices := []model.InvoiceRecord{
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, 1, out.Matches[0].Shipment)
	assert.Equal(t, TierPrimary, out.Matches[0].Tier)
	assert.Empty(t, out.Unconsumed)
}

func TestReconcile_NonPendingShipmentsIgnored(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusUnloaded),
	}
	invoices := []model.InvoiceRecord{
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.Equal(t, []int{0}, out.Unconsumed)
}

func TestReconcile_BypassStatusMatchesLikeBase(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransitBypass),
	}
	invoices := []model.InvoiceRecord{
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Reconcile(shipments, invoices)
	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
}

func TestReconcile_SecondaryMatchesTrailerPlate(t *testing.T) {
	s := shipment("SM1", "", "DIESEL", "TRL5555", "ACME", model.StatusInTransit)
	inv := invoice("555", "DIESEL", "ACME", "XYZ9876", day(11))
	inv.Plate2 = "TRL-5555"

	out, err := Reconciler{}.Reconcile([]model.ShipmentRecord{s}, []model.InvoiceRecord{inv})
	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
}

func TestReconcile_RejectOnConflict(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "123", "HIDRATADO", "ABC1234", "ACME", model.StatusInTransit),
	}
	invoices := []model.InvoiceRecord{
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(11)),
		invoice("123", "HIDRATADO", "ACME", "ABC1234", day(12)),
	}

	_, err := Reconciler{Policy: RejectOnConflict}.Reconcile(shipments, invoices)
	assert.Error(t, err)
}
