// Package orchestrator runs the reconciliation jobs as one repeating,
// strictly sequential cycle. The jobs write to the same workbooks, so they
// must never overlap; ordering within a cycle is configuration.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/model"
)

// JobRunner executes one named job.
type JobRunner interface {
	Run(ctx context.Context, name string) (*model.JobRun, error)
}

// Orchestrator drives ordered job cycles on a cron schedule.
type Orchestrator struct {
	runner JobRunner
	jobs   []string
	spec   string
	log    *zap.SugaredLogger

	mu sync.Mutex // one cycle at a time
}

// New builds an Orchestrator. spec is a cron expression like "@every 50m".
func New(runner JobRunner, jobs []string, spec string) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		jobs:   jobs,
		spec:   spec,
		log:    zap.S().Named("orchestrator"),
	}
}

// Cycle runs every configured job once, in order. A failing job is logged
// and the cycle moves on: a broken invoice report must not stop the
// divergence report from flagging what it can. The returned error names
// every job that failed.
func (o *Orchestrator) Cycle(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var failed []string
	for _, name := range o.jobs {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "orchestrator: cycle cancelled")
		}

		if _, err := o.runner.Run(ctx, name); err != nil {
			o.log.Errorw("job failed, continuing cycle", "job", name, "error", err)
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		return eris.Errorf("orchestrator: jobs failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Start runs one cycle immediately, then repeats on the schedule until ctx
// is cancelled. Cycle errors are logged, not returned: the orchestrator's
// job is to keep tomorrow's tick alive.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.Cycle(ctx); err != nil {
		o.log.Warnw("initial cycle finished with failures", "error", err)
	}

	c := cron.New()
	err := c.AddFunc(o.spec, func() {
		if err := o.Cycle(ctx); err != nil {
			o.log.Warnw("cycle finished with failures", "error", err)
		}
	})
	if err != nil {
		return eris.Wrapf(err, "orchestrator: bad schedule %q", o.spec)
	}

	c.Start()
	defer c.Stop()

	o.log.Infow("orchestrator running", "schedule", o.spec, "jobs", o.jobs)
	<-ctx.Done()
	o.log.Infow("orchestrator stopping")
	return nil
}
