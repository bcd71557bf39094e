package job

import (
	"context"

	"github.com/petrosul/recon-cli/internal/match"
	"github.com/petrosul/recon-cli/internal/model"
)

// runTransit pairs scheduled legs with freshly issued invoices and moves
// them into transit.
func (r *Runner) runTransit(ctx context.Context, result *model.JobResult) error {
	in, err := r.readInputs(result)
	if err != nil {
		return err
	}

	out, err := r.rec.Dispatch(in.shipments, in.invoices)
	if err != nil {
		return err
	}
	result.SecondaryMatches = len(out.Matches)
	result.RowsSkipped = out.Discarded

	sink := r.newSink()
	return r.withBanners(ctx, sink, func() error {
		for _, m := range out.Matches {
			s := &in.shipments[m.Shipment]
			inv := &in.invoices[m.Invoice]

			if err := r.applyRow(ctx, sink, match.DispatchUpdates(s, inv), result); err != nil {
				return err
			}
		}
		return nil
	})
}
