package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/petrosul/recon-cli/internal/job"
	"github.com/petrosul/recon-cli/internal/model"
)

var transitCmd = &cobra.Command{
	Use:   "transito",
	Short: "Dispatch scheduled legs whose invoices were issued",
	Long:  "Pairs PROGRAMADO legs with freshly issued invoices by plate and product, copies the invoice onto the row and moves it to EM TRÂNSITO.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.Transit)
	},
}

var unloadCmd = &cobra.Command{
	Use:   "descarga",
	Short: "Advance in-transit shipments through arrival and unload",
	Long:  "Matches in-transit rows against the invoice report on the primary key (invoice + product + counterparty), falls back to plate matching, and regularizes multi-leg trips whose invoice count diverged from the plan.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.Unload)
	},
}

var divergenceCmd = &cobra.Command{
	Use:   "divergencia",
	Short: "Rebuild the divergence report",
	Long:  "Flags recently issued invoices for tracked products that no planned shipment claims.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.Divergence)
	},
}

func runJob(ctx context.Context, name string) error {
	if err := cfg.Validate(name); err != nil {
		return err
	}

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

	run, err := runner.Run(ctx, name)
	if run != nil {
		printRunSummary(os.Stdout, run)
	}
	return err
}

// printRunSummary prints a one-screen outcome for operators who run jobs by
// hand between timer ticks.
func printRunSummary(w io.Writer, run *model.JobRun) {
	status := color.New(color.FgGreen).Sprint(string(run.Status))
	if run.Status == model.JobStatusFailed {
		status = color.New(color.FgRed).Sprint(string(run.Status))
	}
	fmt.Fprintf(w, "%s  %s  (run %s)\n", run.Job, status, truncateID(run.ID))

	r := run.Result
	if r == nil {
		return
	}
	fmt.Fprintf(w, "  read:      %d shipments, %d invoices\n", r.ShipmentsRead, r.InvoicesRead)
	fmt.Fprintf(w, "  matched:   %d primary, %d secondary\n", r.PrimaryMatches, r.SecondaryMatches)
	fmt.Fprintf(w, "  written:   %d updated, %d appended, %d skipped\n", r.RowsUpdated, r.RowsAppended, r.RowsSkipped)
	if r.Divergences > 0 {
		fmt.Fprintf(w, "  flagged:   %s\n", color.New(color.FgYellow).Sprintf("%d divergences", r.Divergences))
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  error:     %s\n", color.New(color.FgRed).Sprint(r.Error))
	}
}

func init() {
	rootCmd.AddCommand(transitCmd)
	rootCmd.AddCommand(unloadCmd)
	rootCmd.AddCommand(divergenceCmd)
}
