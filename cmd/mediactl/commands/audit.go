package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"marketmedia/internal/bootstrap"
	"marketmedia/internal/config"
	"marketmedia/internal/repositories"
	"marketmedia/internal/services"
	"marketmedia/pkg/database"

	"github.com/spf13/cobra"
)

var failOnDrift bool

// auditCmd classifies every stored image URL
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report image URLs that are not canonical",
	Long: `Scan every product and store image row and classify its stored URL
and thumbnail URL as canonical, drifted, untrusted-original, rejected
or missing.

Examples:
  mediactl audit                  # Summary and findings table
  mediactl audit --json           # Full report as JSON
  mediactl audit --fail-on-drift  # Exit non-zero when findings exist`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudit(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "Exit with an error when any finding is reported")
}

func runAudit(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := bootstrap.NewLogger("mediactl", level)
	logger.SetOutput(os.Stderr)

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.ClosePool(pool)

	store, err := bootstrap.NewObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	guard := services.NewPathGuard(store, logger)
	audit := services.NewDriftAuditService(
		repositories.NewProductImageRepo(pool),
		repositories.NewStoreImageRepo(pool),
		guard,
		logger,
	)

	report, err := audit.Run(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if failOnDrift && !report.Clean() {
		return fmt.Errorf("%d image urls need attention", len(report.Findings))
	}
	return nil
}

func printReport(out io.Writer, report *services.DriftReport) {
	fmt.Fprintf(out, "Scanned %d urls in %s\n", report.Scanned, report.FinishedAt.Sub(report.StartedAt).Round(1e6))

	statuses := make([]string, 0, len(report.Counts))
	for status := range report.Counts {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(out, "  %-20s %d\n", status, report.Counts[services.DriftStatus(status)])
	}

	if len(report.Findings) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tIMAGE\tSTORE\tPRODUCT\tVARIANT\tSTATUS\tSTORED\tSERVED")
	for _, f := range report.Findings {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			f.Kind, f.ImageID, f.StoreID, f.ProductID, f.Variant, f.Status, f.Stored, f.Served)
	}
	w.Flush()
}
