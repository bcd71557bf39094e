// Package match implements the shipment/invoice reconciliation core: key
// indexing with explicit collision handling, the two-tier matcher, leg
// allocation for multi-leg trips and the status transitions that follow a
// match. Everything in this package is pure and in-memory; sheet I/O lives
// in internal/sheet.
package match

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
)

// CollisionPolicy decides what happens when two invoices produce the same
// match key. The legacy pipelines silently kept the last record seen; here
// the choice is explicit and discards are counted.
type CollisionPolicy string

const (
	// FirstWins keeps the earliest record seen for a duplicate key.
	FirstWins CollisionPolicy = "first-wins"
	// LastWins keeps the latest record seen for a duplicate key. This is
	// the compatibility default and a known data-loss risk when two real
	// loads share product+plate+counterparty on the same day.
	LastWins CollisionPolicy = "last-wins"
	// RejectOnConflict fails index construction on any duplicate key.
	RejectOnConflict CollisionPolicy = "reject"
)

// Valid reports whether p names a known policy.
func (p CollisionPolicy) Valid() bool {
	switch p {
	case FirstWins, LastWins, RejectOnConflict:
		return true
	}
	return false
}

// KeyFunc derives the match keys for one invoice. An invoice may carry
// several keys (one per plate on the secondary tier); empty keys are
// ignored.
type KeyFunc func(inv *model.InvoiceRecord) []string

// Index maps match keys to positions in the invoice slice it was built
// from.
type Index struct {
	entries   map[string]int
	Discarded int // records dropped by the collision policy
}

// BuildIndex indexes invoices[i] for every i with skip[i] == false. skip
// may be nil. Under RejectOnConflict the first duplicate key is an error;
// otherwise duplicates are resolved by the policy and counted.
func BuildIndex(invoices []model.InvoiceRecord, skip map[int]bool, keys KeyFunc, policy CollisionPolicy) (*Index, error) {
	if !policy.Valid() {
		return nil, eris.Errorf("match: unknown collision policy %q", policy)
	}

	idx := &Index{entries: make(map[string]int)}
	for i := range invoices {
		if skip[i] {
			continue
		}
		for _, key := range keys(&invoices[i]) {
			if key == "" {
				continue
			}
			prev, exists := idx.entries[key]
			if !exists {
				idx.entries[key] = i
				continue
			}
			switch policy {
			case RejectOnConflict:
				return nil, eris.Errorf("match: duplicate key %q (invoices %s and %s)",
					key, invoices[prev].Number, invoices[i].Number)
			case LastWins:
				idx.entries[key] = i
				idx.Discarded++
				zap.L().Warn("duplicate match key, keeping later invoice",
					zap.String("key", key),
					zap.String("dropped", invoices[prev].Number),
					zap.String("kept", invoices[i].Number))
			case FirstWins:
				idx.Discarded++
				zap.L().Warn("duplicate match key, keeping earlier invoice",
					zap.String("key", key),
					zap.String("dropped", invoices[i].Number),
					zap.String("kept", invoices[prev].Number))
			}
		}
	}
	return idx, nil
}

// Lookup returns the indexed invoice position for key.
func (x *Index) Lookup(key string) (int, bool) {
	i, ok := x.entries[key]
	return i, ok
}

// Len returns the number of distinct keys in the index.
func (x *Index) Len() int {
	return len(x.entries)
}
