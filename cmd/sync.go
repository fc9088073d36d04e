package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/sync"
	"github.com/rezon-bio/leadintel/pkg/airtable"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror local records to the Airtable base",
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push companies, leads, and triggers into Airtable",
	RunE:  runSyncPush,
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncPush(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("sync"); err != nil {
		return err
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	client := airtable.NewClient(cfg.Airtable.Key, cfg.Airtable.BaseID)
	mirror := sync.NewMirror(s, client, sync.Tables{
		Companies: cfg.Airtable.CompaniesTable,
		Leads:     cfg.Airtable.LeadsTable,
		Triggers:  cfg.Airtable.TriggersTable,
	})

	report, err := mirror.Push(ctx)
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "created=%d updated=%d failed=%d\n",
			report.Created, report.Updated, report.Failed)
	}
	return err
}
