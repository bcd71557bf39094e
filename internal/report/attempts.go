package report

import (
	"github.com/petrosul/recon-cli/internal/match"
	"github.com/petrosul/recon-cli/internal/model"
)

// Attempt is one trip group's outcome in a reconciliation pass: the plates
// seen on its legs, the invoices combined into it and whether anything
// matched. The planning team reads the log to answer "why didn't my truck
// move".
type Attempt struct {
	Group    string
	Plates   []string
	Invoices []string
	Outcome  string
}

// Attempt outcomes as written to the log.
const (
	AttemptMatched   = "match"
	AttemptUnmatched = "sem match"
)

// BuildAttempts summarizes a reconciliation outcome per trip group, in
// first-appearance row order. Groups with no leg eligible for matching and
// no match are left out.
func BuildAttempts(shipments []model.ShipmentRecord, invoices []model.InvoiceRecord, out *match.Outcome) []Attempt {
	matchedInv := make(map[int][]int)
	for _, m := range out.Matches {
		matchedInv[m.Shipment] = append(matchedInv[m.Shipment], m.Invoice)
	}

	var order []string
	groups := make(map[string][]int)
	for i := range shipments {
		id := shipments[i].TripID
		if id == "" {
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	attempts := make([]Attempt, 0, len(order))
	for _, id := range order {
		a := Attempt{Group: id}
		eligible := false
		seenPlate := make(map[string]bool)

		for _, si := range groups[id] {
			s := &shipments[si]
			if s.Tractor != "" && !seenPlate[s.Tractor] {
				seenPlate[s.Tractor] = true
				a.Plates = append(a.Plates, s.Tractor)
			}
			if s.Status.MatchEligible() {
				eligible = true
			}
			for _, ii := range matchedInv[si] {
				a.Invoices = append(a.Invoices, invoices[ii].Number)
			}
		}

		switch {
		case len(a.Invoices) > 0:
			a.Outcome = AttemptMatched
		case eligible:
			a.Outcome = AttemptUnmatched
		default:
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts
}
