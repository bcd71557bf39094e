package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/petrosul/recon-cli/internal/job"
	"github.com/petrosul/recon-cli/internal/orchestrator"
)

var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate",
	Short: "Run all jobs on the configured schedule",
	Long:  "Runs one cycle immediately, then repeats every scheduler.every (default 50m) until interrupted. Jobs within a cycle run strictly in order and a failing job does not stop the rest of the cycle.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("orchestrate"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		runner, err := job.NewRunner(cfg, st)
		if err != nil {
			return err
		}

		o := orchestrator.New(runner, cfg.Scheduler.Jobs, cfg.Scheduler.Every)
		return o.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(orchestrateCmd)
}
