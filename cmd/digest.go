package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "List new triggers detected in the lookback window",
	Long: `Collects triggers still in status New that were detected within the
lookback window. With --mark-notified each listed trigger transitions to
Notified so the next digest does not repeat it.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().Int("days-back", 1, "lookback window in days")
	digestCmd.Flags().Bool("mark-notified", false, "transition listed triggers New -> Notified")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	daysBack, _ := cmd.Flags().GetInt("days-back")
	markNotified, _ := cmd.Flags().GetBool("mark-notified")
	since := time.Now().UTC().AddDate(0, 0, -daysBack)

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := newPipeline(s).Digest(ctx, since, markNotified)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "no new triggers")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "[%s/%s] %s at %s: %s\n",
			e.Trigger.Kind, e.Trigger.Urgency, e.Lead, e.Company, e.Trigger.EventIdentity)
	}
	fmt.Fprintf(out, "%d trigger(s)\n", len(entries))
	return nil
}
