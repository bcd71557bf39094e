// Package report builds the divergence report: invoices that were issued
// but never matched any planned shipment row.
package report

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/normalize"
)

// Defaults for the divergence filter. The volume cap drops aggregate or
// mistyped documents that cannot be a single truckload.
const (
	DefaultRecencyDays     = 3
	DefaultVolumeCapLiters = 66000
)

// Config narrows which unmatched invoices count as divergences.
type Config struct {
	// Products is the allow-list. Matching is by substring on the
	// normalized product name, so "HIDRATADO" also covers
	// "ETANOL HIDRATADO COMBUSTIVEL".
	Products []string

	RecencyDays     int
	VolumeCapLiters float64

	// Now is overridable for tests; zero value means time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.RecencyDays <= 0 {
		c.RecencyDays = DefaultRecencyDays
	}
	if c.VolumeCapLiters <= 0 {
		c.VolumeCapLiters = DefaultVolumeCapLiters
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Filter keeps the unmatched invoices worth flagging: a tracked product,
// issued within the recency window and within one truckload of volume.
func Filter(unmatched []model.InvoiceRecord, cfg Config) []model.InvoiceRecord {
	cfg = cfg.withDefaults()

	products := make([]string, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		if k := normalize.Key(p); k != "" {
			products = append(products, k)
		}
	}

	now := cfg.Now()
	cutoff := now.AddDate(0, 0, -cfg.RecencyDays)

	var out []model.InvoiceRecord
	for _, inv := range unmatched {
		if !productTracked(inv.Product, products) {
			continue
		}
		if inv.IssueDate.IsZero() || inv.IssueDate.Before(cutoff) || inv.IssueDate.After(now) {
			continue
		}
		if inv.Quantity > cfg.VolumeCapLiters {
			continue
		}
		out = append(out, inv)
	}

	zap.S().Infow("filtered divergences",
		"unmatched", len(unmatched), "flagged", len(out), "window_days", cfg.RecencyDays)
	return out
}

func productTracked(product string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	key := normalize.Key(product)
	for _, p := range allowed {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}
