package match

import (
	"time"

	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
)

// Tier identifies which key a match was found on.
type Tier string

const (
	TierPrimary   Tier = "primary"   // invoice number + product + counterparty
	TierSecondary Tier = "secondary" // plate + product + counterparty
)

// Match pairs a shipment with the invoice that covered it. Indices point
// into the slices given to Reconcile.
type Match struct {
	Shipment int
	Invoice  int
	Tier     Tier
}

// Outcome is the result of one reconciliation pass.
type Outcome struct {
	Matches []Match
	// Unmatched lists shipments that stayed in their pending status.
	Unmatched []int
	// Unconsumed lists invoices no shipment claimed; they are the
	// divergence-report candidates.
	Unconsumed []int
	// Discarded counts invoices dropped during index construction by the
	// collision policy.
	Discarded int
}

// Consumed reports whether invoice i was claimed by a match.
func (o *Outcome) Consumed(i int) bool {
	for _, m := range o.Matches {
		if m.Invoice == i {
			return true
		}
	}
	return false
}

// Reconciler runs the two-tier shipment/invoice matcher.
type Reconciler struct {
	Policy CollisionPolicy
}

// Reconcile matches in-transit and awaiting-unload shipments against
// unconsumed invoices. Scheduled legs never participate: they are the
// dispatch pass's concern, and letting one claim an invoice here would
// both starve the row the invoice belongs to and hide the document from
// the divergence report.
//
// Tier 1 joins on the primary key (invoice number + product +
// counterparty). Shipments left over go to tier 2, which joins on the
// secondary key (plate + product + counterparty) and additionally requires
// the invoice issue date to be on or after the shipment loading date, so a
// past trip can never claim a future invoice. A consumed invoice is out of
// play for the rest of the run.
//
// The pass is pure and deterministic for a given input order; it never
// mutates its inputs.
func (r Reconciler) Reconcile(shipments []model.ShipmentRecord, invoices []model.InvoiceRecord) (Outcome, error) {
	policy := r.Policy
	if policy == "" {
		policy = LastWins
	}

	var out Outcome
	consumed := make(map[int]bool)

	primary, err := BuildIndex(invoices, nil, PrimaryInvoiceKeys, policy)
	if err != nil {
		return Outcome{}, err
	}
	out.Discarded += primary.Discarded

	var second []int
	for si := range shipments {
		s := &shipments[si]
		if !s.Status.MatchEligible() {
			continue
		}
		key := PrimaryShipmentKey(s)
		if key == "" {
			second = append(second, si)
			continue
		}
		inv, ok := primary.Lookup(key)
		if !ok || consumed[inv] {
			second = append(second, si)
			continue
		}
		consumed[inv] = true
		out.Matches = append(out.Matches, Match{Shipment: si, Invoice: inv, Tier: TierPrimary})
	}

	secondary, err := BuildIndex(invoices, consumed, SecondaryInvoiceKeys, policy)
	if err != nil {
		return Outcome{}, err
	}
	out.Discarded += secondary.Discarded

	for _, si := range second {
		s := &shipments[si]
		inv, ok := secondary.Lookup(SecondaryShipmentKey(s))
		if !ok || consumed[inv] {
			out.Unmatched = append(out.Unmatched, si)
			continue
		}
		if !issueAfterLoading(&invoices[inv], s) {
			zap.L().Debug("secondary match rejected by date constraint",
				zap.String("trip", s.TripID),
				zap.String("invoice", invoices[inv].Number))
			out.Unmatched = append(out.Unmatched, si)
			continue
		}
		consumed[inv] = true
		out.Matches = append(out.Matches, Match{Shipment: si, Invoice: inv, Tier: TierSecondary})
	}

	for i := range invoices {
		if !consumed[i] {
			out.Unconsumed = append(out.Unconsumed, i)
		}
	}
	return out, nil
}

// issueAfterLoading enforces the tier-2 monotonicity constraint: the
// invoice must have been issued on or after the day the truck loaded. A
// shipment without a loading date cannot satisfy the constraint.
func issueAfterLoading(inv *model.InvoiceRecord, s *model.ShipmentRecord) bool {
	if s.LoadingDate.IsZero() || inv.IssueDate.IsZero() {
		return false
	}
	return !inv.IssueDate.Before(truncateDay(s.LoadingDate))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
