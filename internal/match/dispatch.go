package match

import (
	"sort"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

// DispatchOutcome is the result of pairing scheduled legs with freshly
// issued invoices.
type DispatchOutcome struct {
	Matches    []Match // always TierSecondary: dispatch joins on plate+product
	Unmatched  []int
	Unconsumed []int
	Discarded  int
}

// Dispatch pairs scheduled shipment legs with newly issued invoices by
// plate + product and hands each pair to the transit transition.
//
// Invoices whose number already appears anywhere in the transport sheets
// are excluded up front — the shipment side is the system of record, and an
// NF (nota fiscal) placed on any row must never be assigned twice. When
// several scheduled legs share a plate+product key, the earliest by
// scheduled date (then source row) is served first, matching how the
// planning team enters legs.
func (r Reconciler) Dispatch(shipments []model.ShipmentRecord, invoices []model.InvoiceRecord) (DispatchOutcome, error) {
	policy := r.Policy
	if policy == "" {
		policy = LastWins
	}

	// Global NF block: every number already present on a shipment row.
	taken := make(map[string]bool)
	for i := range shipments {
		if nf := normalize.DocNumber(shipments[i].InvoiceNumber); nf != "" {
			taken[nf] = true
		}
	}

	skip := make(map[int]bool)
	for i := range invoices {
		if taken[normalize.DocNumber(invoices[i].Number)] {
			skip[i] = true
		}
	}

	idx, err := BuildIndex(invoices, skip, DispatchInvoiceKeys, policy)
	if err != nil {
		return DispatchOutcome{}, err
	}

	// Scheduled legs without an invoice, earliest first.
	var pending []int
	for i := range shipments {
		s := &shipments[i]
		if s.Status.Base() == model.StatusScheduled && normalize.DocNumber(s.InvoiceNumber) == "" {
			pending = append(pending, i)
		}
	}
	sort.SliceStable(pending, func(a, b int) bool {
		sa, sb := &shipments[pending[a]], &shipments[pending[b]]
		if !sa.ScheduledDate.Equal(sb.ScheduledDate) {
			return sa.ScheduledDate.Before(sb.ScheduledDate)
		}
		return sa.Source.Row < sb.Source.Row
	})

	out := DispatchOutcome{Discarded: idx.Discarded}
	consumed := make(map[int]bool)
	seenKey := make(map[string]bool)

	for _, si := range pending {
		s := &shipments[si]
		key := DispatchShipmentKey(s)
		if key == "" || seenKey[key] {
			// Later legs with the same plate+product wait for the next
			// run; one invoice cannot cover two legs here.
			out.Unmatched = append(out.Unmatched, si)
			continue
		}
		seenKey[key] = true

		inv, ok := idx.Lookup(key)
		if !ok || consumed[inv] {
			out.Unmatched = append(out.Unmatched, si)
			continue
		}
		consumed[inv] = true
		out.Matches = append(out.Matches, Match{Shipment: si, Invoice: inv, Tier: TierSecondary})
	}

	for i := range invoices {
		if !skip[i] && !consumed[i] {
			out.Unconsumed = append(out.Unconsumed, i)
		}
	}
	return out, nil
}
