package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/enrich"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

var scoreCmd = &cobra.Command{
	Use:   "score <company-name>",
	Short: "One-off ICP assessment of a company",
	Long: `Researches a single company and prints its fit and urgency scores without
writing anything to the record store. Useful for qualifying an inbound
before deciding whether to track it.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	// No store involved: the pipeline only needs the oracle for an assessment.
	p := enrich.NewPipeline(nil, oracle.NewClient(cfg.Anthropic.Key), pipelineConfig()).
		WithScorer(loadScorer())
	c, err := p.Assess(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", c.Name)
	fmt.Fprintf(out, "  fit score:     %d\n", c.FitScore)
	fmt.Fprintf(out, "  urgency score: %d\n", c.UrgencyScore)
	if c.CompanySize != "" {
		fmt.Fprintf(out, "  size:          %s\n", c.CompanySize)
	}
	if c.FundingStage != "" {
		fmt.Fprintf(out, "  funding:       %s\n", c.FundingStage)
	}
	if len(c.PipelineStages) > 0 {
		fmt.Fprintf(out, "  pipeline:      %s\n", strings.Join(c.PipelineStages, ", "))
	}
	if len(c.TechnologyPlatforms) > 0 {
		fmt.Fprintf(out, "  platforms:     %s\n", strings.Join(c.TechnologyPlatforms, ", "))
	}
	if c.ManufacturingStatus != "" {
		fmt.Fprintf(out, "  manufacturing: %s\n", c.ManufacturingStatus)
	}
	if c.IntelligenceNotes != "" {
		fmt.Fprintf(out, "  notes:         %s\n", c.IntelligenceNotes)
	}
	return nil
}
