package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/enrich"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Process manual campaign uploads",
}

var campaignImportCmd = &cobra.Command{
	Use:   "import <leads.csv>",
	Short: "Resolve campaign contacts into the record store",
	Long: `Reads a CSV with name, company, and optional title and email columns and
resolves every contact. Uploads are operator-curated, so unknown companies
are admitted without a pre-screen. Contacts resolving to existing records
only fill fields that are still blank.`,
	Args: cobra.ExactArgs(1),
	RunE: runCampaignImport,
}

func init() {
	campaignImportCmd.Flags().String("name", "", "campaign name recorded as the lead source (required)")
	campaignCmd.AddCommand(campaignImportCmd)
	rootCmd.AddCommand(campaignCmd)
}

func runCampaignImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	campaign, _ := cmd.Flags().GetString("name")
	if campaign == "" {
		return eris.New("--name is required")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return eris.Wrap(err, "open campaign csv")
	}
	defer f.Close()

	rows, err := enrich.LoadCampaignCSV(f)
	if err != nil {
		return err
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := newPipeline(s).ImportCampaign(ctx, campaign, rows)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}
