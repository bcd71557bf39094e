package job

import (
	"context"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/report"
)

// runDivergence rebuilds the divergence report from the invoices neither
// matching tier could place. The report is read-only output: this job never
// touches the transport workbooks.
func (r *Runner) runDivergence(ctx context.Context, result *model.JobResult) error {
	in, err := r.readInputs(result)
	if err != nil {
		return err
	}

	out, err := r.rec.Reconcile(in.shipments, in.invoices)
	if err != nil {
		return err
	}

	unmatched := make([]model.InvoiceRecord, 0, len(out.Unconsumed))
	for _, i := range out.Unconsumed {
		unmatched = append(unmatched, in.invoices[i])
	}

	flagged := report.Filter(unmatched, report.Config{
		Products:        r.cfg.Divergence.Products,
		RecencyDays:     r.cfg.Divergence.RecencyDays,
		VolumeCapLiters: r.cfg.Divergence.VolumeCapLiters,
		Now:             r.now,
	})
	result.Divergences = len(flagged)

	writeErr := report.WriteXLSX(r.cfg.Paths.DivergenceReport, flagged)

	if logPath := r.cfg.Paths.DivergenceRunLog; logPath != "" {
		attempts := report.BuildAttempts(in.shipments, in.invoices, &out)
		if err := report.AppendRunLog(logPath, r.now(), attempts, writeErr); err != nil {
			r.log.Warnw("failed to append divergence run log", "error", err)
		}
	}

	return writeErr
}
