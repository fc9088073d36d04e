package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/trigger"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Maintain trigger events",
}

var triggersCleanupCmd = &cobra.Command{
	Use:   "cleanup-orphans",
	Short: "Delete triggers whose owning lead no longer exists",
	RunE:  runTriggersCleanup,
}

var triggersRegenerateCmd = &cobra.Command{
	Use:   "regenerate <trigger-id>",
	Short: "Advance a trigger's outreach version for content regeneration",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriggersRegenerate,
}

func init() {
	triggersCleanupCmd.Flags().Bool("dry-run", false, "report orphans without deleting")
	triggersRegenerateCmd.Flags().Int("max-version", 0, "regeneration ceiling (0=use config)")

	triggersCmd.AddCommand(triggersCleanupCmd, triggersRegenerateCmd)
	rootCmd.AddCommand(triggersCmd)
}

func runTriggersCleanup(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := trigger.NewLifecycle(s).CleanupOrphans(ctx, nil, dryRun)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d orphans=%d relinked=%d deleted=%d dry_run=%v\n",
		report.Scanned, len(report.Orphans), report.Relinked, report.Deleted, dryRun)
	return nil
}

func runTriggersRegenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	versionCap := cfg.Trigger.OutreachVersionCap
	if flagCap, _ := cmd.Flags().GetInt("max-version"); flagCap > 0 {
		versionCap = flagCap
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	advanced, err := trigger.NewLifecycle(s).WithVersionCap(versionCap).Regenerate(ctx, args[0])
	if err != nil {
		return err
	}
	if !advanced {
		fmt.Fprintln(cmd.OutOrStdout(), "refused: version cap reached")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "outreach version advanced")
	return nil
}
