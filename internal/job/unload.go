package job

import (
	"context"

	"github.com/petrosul/recon-cli/internal/match"
	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/sheet"
)

// runUnload advances in-transit shipments through arrival and unload, then
// regularizes multi-leg trip groups whose planned leg count diverged from
// the invoices actually issued.
func (r *Runner) runUnload(ctx context.Context, result *model.JobResult) error {
	in, err := r.readInputs(result)
	if err != nil {
		return err
	}

	out, err := r.rec.Reconcile(in.shipments, in.invoices)
	if err != nil {
		return err
	}
	result.RowsSkipped = out.Discarded
	for _, m := range out.Matches {
		if m.Tier == match.TierPrimary {
			result.PrimaryMatches++
		} else {
			result.SecondaryMatches++
		}
	}

	sink := r.newSink()
	return r.withBanners(ctx, sink, func() error {
		matchedShipment := make(map[int]bool, len(out.Matches))

		for _, m := range out.Matches {
			s := &in.shipments[m.Shipment]
			inv := &in.invoices[m.Invoice]
			matchedShipment[m.Shipment] = true

			next, ok := match.Transition(s.Status, inv)
			if !ok {
				continue
			}
			if err := r.applyRow(ctx, sink, match.UnloadUpdates(s, inv, next), result); err != nil {
				return err
			}
		}

		return r.regularizeGroups(ctx, sink, in, &out, matchedShipment, result)
	})
}

// regularizeGroups reconciles leg counts per trip group: planned legs that
// no invoice will ever cover are released, surplus invoices become new rows
// cloned from the group's first leg.
func (r *Runner) regularizeGroups(
	ctx context.Context,
	sink sheet.Sink,
	in inputs,
	out *match.Outcome,
	matchedShipment map[int]bool,
	result *model.JobResult,
) error {
	// Groups are processed in first-appearance row order. Leftover invoices
	// below are claimed first come first served, so map-order iteration
	// would make the winner of a shared dispatch key vary run to run.
	var order []string
	groups := make(map[string][]int)
	for i := range in.shipments {
		id := in.shipments[i].TripID
		if id == "" {
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	// Index leftover invoices by dispatch key so surplus documents can be
	// attributed to the group that loaded them.
	leftover := make(map[string][]int)
	for _, i := range out.Unconsumed {
		for _, key := range match.DispatchInvoiceKeys(&in.invoices[i]) {
			leftover[key] = append(leftover[key], i)
		}
	}
	claimed := make(map[int]bool)

	for _, id := range order {
		legs := groups[id]
		active := false
		var open []int
		for _, si := range legs {
			s := &in.shipments[si]
			if matchedShipment[si] || s.InvoiceNumber != "" {
				active = true
			} else if s.Status.Base() == model.StatusScheduled {
				open = append(open, si)
			}
		}
		// A group that never loaded anything is still waiting; leave it.
		if !active {
			continue
		}

		var groupInvs []int
		if key := match.DispatchShipmentKey(&in.shipments[legs[0]]); key != "" {
			for _, i := range leftover[key] {
				if !claimed[i] {
					claimed[i] = true
					groupInvs = append(groupInvs, i)
				}
			}
		}
		if len(open) == 0 && len(groupInvs) == 0 {
			continue
		}

		alloc := match.AllocateLegs(in.shipments, open, in.invoices, groupInvs)

		for _, m := range alloc.Pairs {
			s := &in.shipments[m.Shipment]
			inv := &in.invoices[m.Invoice]
			if err := r.applyRow(ctx, sink, match.DispatchUpdates(s, inv), result); err != nil {
				return err
			}
		}

		for _, si := range alloc.Released {
			if err := r.applyRow(ctx, sink, match.ReleaseUpdates(&in.shipments[si]), result); err != nil {
				return err
			}
		}

		if len(alloc.Extra) > 0 {
			base := &in.shipments[legs[0]]
			clones := make([]model.ShipmentRecord, 0, len(alloc.Extra))
			for _, i := range alloc.Extra {
				clones = append(clones, match.CloneLegForInvoice(base, &in.invoices[i]))
			}
			if err := sink.Append(ctx, base.Source.File, clones); err != nil {
				return err
			}
			result.RowsAppended += len(clones)
		}
	}

	return nil
}
