package match

import (
	"sort"

	"github.com/petrosul/recon-cli/internal/model"
)

// LegAllocation reconciles N planned legs of one trip group against M
// invoices that actually covered it. Pairs are index-aligned after sorting;
// the shorter side decides how many direct pairs exist.
type LegAllocation struct {
	// Pairs maps shipment indices to invoice indices, one to one.
	Pairs []Match
	// Released legs were planned but never loaded; they leave the plan
	// with StatusLegReleased.
	Released []int
	// Extra invoices exceeded the planned legs; each becomes a new row
	// cloned from the group's first leg.
	Extra []int
}

// AllocateLegs pairs the legs of a single trip group with the invoices
// matched to that group.
//
// Legs are ordered by scheduled date and then source row, invoices by issue
// date ascending, and the two sequences are zipped. The ordering rule is
// deliberate: the sheets carry no explicit leg key, and scheduled date with
// a row-index tie-break is the only ordering the planning team maintains.
func AllocateLegs(shipments []model.ShipmentRecord, legs []int, invoices []model.InvoiceRecord, matched []int) LegAllocation {
	ordered := append([]int(nil), legs...)
	sort.SliceStable(ordered, func(a, b int) bool {
		sa, sb := &shipments[ordered[a]], &shipments[ordered[b]]
		if !sa.ScheduledDate.Equal(sb.ScheduledDate) {
			return sa.ScheduledDate.Before(sb.ScheduledDate)
		}
		return sa.Source.Row < sb.Source.Row
	})

	byIssue := append([]int(nil), matched...)
	sort.SliceStable(byIssue, func(a, b int) bool {
		return invoices[byIssue[a]].IssueDate.Before(invoices[byIssue[b]].IssueDate)
	})

	var alloc LegAllocation
	n := min(len(ordered), len(byIssue))
	for i := 0; i < n; i++ {
		alloc.Pairs = append(alloc.Pairs, Match{
			Shipment: ordered[i],
			Invoice:  byIssue[i],
			Tier:     TierSecondary,
		})
	}
	if len(ordered) > n {
		alloc.Released = ordered[n:]
	}
	if len(byIssue) > n {
		alloc.Extra = byIssue[n:]
	}
	return alloc
}

// CloneLegForInvoice builds the shipment row appended when a trip group
// received more invoices than it had planned legs. The clone copies the
// base leg's routing fields and takes identity, volume and dates from the
// invoice.
func CloneLegForInvoice(base *model.ShipmentRecord, inv *model.InvoiceRecord) model.ShipmentRecord {
	clone := *base
	clone.InvoiceNumber = inv.Number
	clone.VolumeLiters = inv.Quantity
	clone.LoadingDate = inv.IssueDate
	clone.LoadingTime = inv.LoadingTime
	clone.Status = model.StatusInTransit
	clone.Source = model.RowRef{} // appended, has no source row yet
	return clone
}
