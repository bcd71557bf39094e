// Package job wires the reconciliation core to workbook I/O and the run
// log. Each job is one timer tick's worth of work: read everything, match,
// write back, record the outcome.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/petrosul/recon-cli/internal/config"
	"github.com/petrosul/recon-cli/internal/match"
	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/resilience"
	"github.com/petrosul/recon-cli/internal/sheet"
	"github.com/petrosul/recon-cli/internal/store"
)

// Job names as they appear in config, on the CLI and in the run log.
const (
	Transit    = "transito"
	Unload     = "descarga"
	Divergence = "divergencia"
)

// Runner executes the named jobs against the configured workbooks.
type Runner struct {
	cfg    *config.Config
	store  store.Store
	layout sheet.Layout
	rec    match.Reconciler
	log    *zap.SugaredLogger

	// newSink is a factory so tests can substitute a memory sink.
	newSink func() sheet.Sink
	now     func() time.Time
}

// NewRunner builds a Runner from validated configuration.
func NewRunner(cfg *config.Config, st store.Store) (*Runner, error) {
	layout := sheet.DefaultTransportLayout()
	if cfg.Paths.LayoutFile != "" {
		var err error
		layout, err = sheet.LoadLayout(cfg.Paths.LayoutFile)
		if err != nil {
			return nil, err
		}
	}

	policy, err := cfg.CollisionPolicy()
	if err != nil {
		return nil, err
	}

	retry := cfg.RetryPolicy()
	var limiter *rate.Limiter
	if cfg.Match.WritesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Match.WritesPerSecond), 1)
	}

	return &Runner{
		cfg:    cfg,
		store:  st,
		layout: layout,
		rec:    match.Reconciler{Policy: policy},
		log:    zap.S().Named("job"),
		newSink: func() sheet.Sink {
			return sheet.NewXLSXSink(layout, retry, limiter)
		},
		now: time.Now,
	}, nil
}

// Run executes one job by name and returns its persisted run record.
func (r *Runner) Run(ctx context.Context, name string) (*model.JobRun, error) {
	switch name {
	case Transit:
		return r.track(ctx, name, r.runTransit)
	case Unload:
		return r.track(ctx, name, r.runUnload)
	case Divergence:
		return r.track(ctx, name, r.runDivergence)
	default:
		return nil, eris.Errorf("job: unknown job %q", name)
	}
}

// track brackets a job body with run-log bookkeeping. The run log is best
// effort: a store failure is logged but never fails the job itself.
func (r *Runner) track(ctx context.Context, name string, fn func(context.Context, *model.JobResult) error) (*model.JobRun, error) {
	run, err := r.store.CreateRun(ctx, name)
	if err != nil {
		return nil, eris.Wrapf(err, "job: create run for %s", name)
	}

	log := r.log.With("job", name, "run_id", run.ID)
	log.Infow("job started")
	start := r.now()

	result := &model.JobResult{}
	jobErr := fn(ctx, result)

	if jobErr != nil {
		result.Error = jobErr.Error()
		if storeErr := r.store.FailRun(ctx, run.ID, result); storeErr != nil {
			log.Warnw("failed to record run failure", "error", storeErr)
		}
		log.Errorw("job failed", "duration", r.now().Sub(start), "error", jobErr)
		run.Status = model.JobStatusFailed
		run.Result = result
		return run, jobErr
	}

	if storeErr := r.store.CompleteRun(ctx, run.ID, result); storeErr != nil {
		log.Warnw("failed to record run completion", "error", storeErr)
	}
	log.Infow("job complete",
		"duration", r.now().Sub(start),
		"rows_updated", result.RowsUpdated,
		"rows_appended", result.RowsAppended)
	run.Status = model.JobStatusComplete
	run.Result = result
	return run, nil
}

// inputs is everything a matching job reads before it writes anything.
type inputs struct {
	shipments []model.ShipmentRecord
	invoices  []model.InvoiceRecord
}

func (r *Runner) readInputs(result *model.JobResult) (inputs, error) {
	var in inputs

	for _, path := range r.cfg.Paths.TransportWorkbooks {
		recs, err := sheet.ReadTransportWorkbook(path, r.layout)
		if err != nil {
			return in, err
		}
		in.shipments = append(in.shipments, recs...)
	}

	invs, err := sheet.ReadInvoiceReport(r.cfg.Paths.InvoiceReport)
	if err != nil {
		return in, err
	}
	in.invoices = invs

	result.ShipmentsRead = len(in.shipments)
	result.InvoicesRead = len(in.invoices)
	return in, nil
}

// applyRow writes one UpdateSet. A failure is row-scoped unless the sink
// declared it fatal: the row is logged and skipped so the rest of the batch
// still lands.
func (r *Runner) applyRow(ctx context.Context, sink sheet.Sink, set model.UpdateSet, result *model.JobResult) error {
	err := sink.Apply(ctx, set)
	if err == nil {
		result.RowsUpdated++
		return nil
	}
	if resilience.IsFatal(err) || ctx.Err() != nil {
		return err
	}
	rowErr := resilience.NewRowError(
		fmt.Sprintf("%s!%s:%d", set.Target.File, set.Target.Sheet, set.Target.Row),
		"apply update", err)
	r.log.Warnw("row skipped", "error", rowErr)
	result.RowsSkipped++
	return nil
}

// withBanners marks every transport workbook red, runs the body, and flips
// the banners green only on success. A crash mid-run leaves red banners so
// the planning team knows the sheets may be half-written.
func (r *Runner) withBanners(ctx context.Context, sink sheet.Sink, fn func() error) error {
	for _, path := range r.cfg.Paths.TransportWorkbooks {
		if err := sink.MarkBanner(ctx, path, false); err != nil {
			return err
		}
	}
	if err := sink.Flush(ctx); err != nil {
		return err
	}

	if err := fn(); err != nil {
		return err
	}

	for _, path := range r.cfg.Paths.TransportWorkbooks {
		if err := sink.MarkBanner(ctx, path, true); err != nil {
			return err
		}
	}
	return sink.Flush(ctx)
}
