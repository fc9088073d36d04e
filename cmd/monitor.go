package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/resolve"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Check monitor-flagged leads for recent activity and book triggers",
	Long: `Researches every monitor-flagged lead for recent public activity (funding,
role changes, speaking slots, pipeline advancement, partnerships) and books a
trigger event for each verifiable finding. Events matching an open trigger for
the same lead are skipped.`,
	RunE: runMonitor,
}

var monitorFlagCmd = &cobra.Command{
	Use:   "flag <lead-name>",
	Short: "Turn monitoring on or off for one lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorFlag,
}

func init() {
	monitorCmd.Flags().Int("days-back", 30, "activity window in days")
	monitorCmd.Flags().Int("limit", 0, "maximum leads to check (0=all)")
	monitorFlagCmd.Flags().String("company", "", "company the lead belongs to (required)")
	monitorFlagCmd.Flags().Bool("off", false, "clear the flag instead of setting it")
	_ = monitorFlagCmd.MarkFlagRequired("company")

	monitorCmd.AddCommand(monitorFlagCmd)
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	daysBack, _ := cmd.Flags().GetInt("days-back")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := newPipeline(s).MonitorLeads(ctx, daysBack, limit)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func runMonitorFlag(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	company, _ := cmd.Flags().GetString("company")
	off, _ := cmd.Flags().GetBool("off")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	companyID, err := resolve.NewResolver(s).FindCompany(ctx, company)
	if err != nil {
		return err
	}
	l, err := s.GetLeadByName(ctx, args[0], companyID)
	if err != nil {
		return err
	}

	l.MonitorFlag = !off
	if err := s.UpdateLead(ctx, l); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: monitor=%t\n", l.Name, l.MonitorFlag)
	return nil
}
