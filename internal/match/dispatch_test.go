package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrosul/recon-cli/internal/model"
)

func TestDispatch_PairsScheduledLegWithInvoice(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "", "GASOLINA C", "ABC1234", "ACME", model.StatusScheduled),
	}
	invoices := []model.InvoiceRecord{
		invoice("777", "Gasolina C", "ACME", "abc-1234", day(11)),
	}

	out, err := Reconciler{}.Dispatch(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	assert.Empty(t, out.Unconsumed)
}

func TestDispatch_ExcludesAlreadyRegisteredInvoices(t *testing.T) {
	shipments := []model.ShipmentRecord{
		// A different trip already carries NF 777.
		shipment("SM0", "777", "DIESEL", "ZZZ0001", "OTHER", model.StatusInTransit),
		shipment("SM1", "", "GASOLINA C", "ABC1234", "ACME", model.StatusScheduled),
	}
	invoices := []model.InvoiceRecord{
		invoice("777.0", "GASOLINA C", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Dispatch(shipments, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.Contains(t, out.Unmatched, 1)
}

func TestDispatch_ServesEarliestLegFirst(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM2", "", "DIESEL", "ABC1234", "ACME", model.StatusScheduled),
		shipment("SM1", "", "DIESEL", "ABC1234", "ACME", model.StatusScheduled),
	}
	shipments[0].ScheduledDate, shipments[0].Source.Row = day(12), 2
	shipments[1].ScheduledDate, shipments[1].Source.Row = day(10), 3

	invoices := []model.InvoiceRecord{
		invoice("888", "DIESEL", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Dispatch(shipments, invoices)
	require.NoError(t, err)
	require.Len(t, out.Matches, 1)
	// The earlier scheduled leg (index 1) wins the single invoice.
	assert.Equal(t, 1, out.Matches[0].Shipment)
	assert.Equal(t, []int{0}, out.Unmatched)
}

func TestDispatch_ScheduledWithInvoiceNumberSkipped(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "999", "DIESEL", "ABC1234", "ACME", model.StatusScheduled),
	}
	invoices := []model.InvoiceRecord{
		invoice("888", "DIESEL", "ACME", "ABC1234", day(11)),
	}

	out, err := Reconciler{}.Dispatch(shipments, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.Equal(t, []int{0}, out.Unconsumed)
}

func TestDispatch_UnmatchedInvoiceReported(t *testing.T) {
	shipments := []model.ShipmentRecord{
		shipment("SM1", "", "DIESEL", "ABC1234", "ACME", model.StatusScheduled),
	}
	invoices := []model.InvoiceRecord{
		invoice("888", "HIDRATADO", "ACME", "ABC1234", day(11)), // product differs
	}

	out, err := Reconciler{}.Dispatch(shipments, invoices)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
	assert.Equal(t, []int{0}, out.Unconsumed)
}
