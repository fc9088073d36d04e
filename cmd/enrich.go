package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/enrich"
	"github.com/rezon-bio/leadintel/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run enrichment batches against the research oracle",
}

var enrichCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Research and score companies in the given enrichment status",
	RunE:  runEnrichCompanies,
}

var enrichLeadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Research and score leads in the given enrichment status",
	RunE:  runEnrichLeads,
}

var enrichReworkCmd = &cobra.Command{
	Use:   "rework",
	Short: "Re-queue enriched records whose aggregate confidence is too low",
	RunE:  runEnrichRework,
}

func init() {
	for _, c := range []*cobra.Command{enrichCompaniesCmd, enrichLeadsCmd} {
		c.Flags().String("status", string(model.EnrichmentNotEnriched), "enrichment status to select")
		c.Flags().Int("limit", 0, "maximum records to process (0=all)")
	}
	enrichReworkCmd.Flags().Int("threshold", 0, "confidence threshold (0=use config)")

	enrichCmd.AddCommand(enrichCompaniesCmd, enrichLeadsCmd, enrichReworkCmd)
	rootCmd.AddCommand(enrichCmd)
}

func parseStatus(s string) (model.EnrichmentStatus, error) {
	switch model.EnrichmentStatus(s) {
	case model.EnrichmentNotEnriched, model.EnrichmentEnriched, model.EnrichmentFailed:
		return model.EnrichmentStatus(s), nil
	}
	return "", eris.Errorf("unknown enrichment status %q", s)
}

func runEnrichCompanies(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	statusFlag, _ := cmd.Flags().GetString("status")
	status, err := parseStatus(statusFlag)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := newPipeline(s).EnrichCompanies(ctx, status, limit)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func runEnrichLeads(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	statusFlag, _ := cmd.Flags().GetString("status")
	status, err := parseStatus(statusFlag)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := newPipeline(s).EnrichLeads(ctx, status, limit)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func runEnrichRework(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetInt("threshold")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	// The rework pass only reads confidence maps; no oracle calls happen, so
	// the pipeline is built without requiring an API key.
	report, err := newPipeline(s).ScreenRework(ctx, threshold)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func printReport(cmd *cobra.Command, r *enrich.Report) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"processed=%d updated=%d created=%d deleted=%d skipped=%d failed=%d\n",
		r.Processed, r.Updated, r.Created, r.Deleted, r.Skipped, r.Failed)
}
