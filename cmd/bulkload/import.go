package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
)

var importFlags struct {
	group        string
	batchSize    int
	maxRetries   int
	dataDir      string
	reportDir    string
	createTables bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run an import and exit",
	Long: `Import every registered entity, or one group, from the data directory.

Entities run in catalogue order so parents land before children. A failed
entity does not stop the run; the exit status is non-zero when any entity
failed or the database could not be reached.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importFlags.group, "group", "g", "", "Import only this entity group")
	f.IntVar(&importFlags.batchSize, "batch-size", 0, "Records per transaction (IMPORT_BATCH_SIZE)")
	f.IntVar(&importFlags.maxRetries, "max-retries", 0, "Connection attempts before giving up (IMPORT_MAX_RETRIES)")
	f.StringVar(&importFlags.dataDir, "data", "", "Directory holding the source spreadsheets (IMPORT_DATA_DIR)")
	f.StringVar(&importFlags.reportDir, "report-dir", "", "Directory for the stats JSON; empty disables it (IMPORT_REPORT_DIR)")
	f.BoolVar(&importFlags.createTables, "create-tables", true, "Create missing target tables (IMPORT_CREATE_TABLES)")
}

// applyImportFlags overrides config values with flags the user set explicitly.
func applyImportFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		c.Import.BatchSize = importFlags.batchSize
	}
	if flags.Changed("max-retries") {
		c.Import.MaxRetries = importFlags.maxRetries
	}
	if flags.Changed("data") {
		c.Import.DataDir = importFlags.dataDir
	}
	if flags.Changed("report-dir") {
		c.Import.ReportDir = importFlags.reportDir
	}
	if flags.Changed("create-tables") {
		c.Import.CreateTables = importFlags.createTables
	}
	return c.Validate()
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := applyImportFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, core.RunTimeout)
	defer cancel()

	report, err := newService().Run(ctx, importFlags.group)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return err
	}
	if !report.Success {
		return errors.New("import finished with failed entities")
	}
	return nil
}

// printReport writes a per-entity summary table followed by the run totals.
func printReport(w io.Writer, report *core.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tTABLE\tSTATUS\tREAD\tAPPLIED\tDETAIL")
	for _, e := range report.Entities {
		detail := ""
		switch {
		case e.Code != "":
			detail = e.Code + " " + e.Error
		case len(e.Diagnostics) > 0:
			detail = e.Diagnostics[0]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", e.Name, e.Table, e.Status, e.Read, e.Applied, detail)
	}
	tw.Flush()

	s := report.Stats
	fmt.Fprintf(w, "\nrun %s: %d/%d entities attempted, %d succeeded, %d failed, %d skipped, %d records in %s\n",
		report.RunID, s.EntitiesAttempted, s.EntitiesTotal, s.EntitiesSucceeded, s.EntitiesFailed,
		s.EntitiesSkipped, s.TotalRecords, s.Duration.Round(time.Millisecond))
	if report.Error != "" {
		fmt.Fprintf(w, "run failed: %s\n", report.Error)
	}
}
