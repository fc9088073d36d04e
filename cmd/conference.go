package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rezon-bio/leadintel/internal/enrich"
)

var conferenceCmd = &cobra.Command{
	Use:   "conference",
	Short: "Process conference attendee exports",
}

var conferenceIngestCmd = &cobra.Command{
	Use:   "ingest <attendees.json>",
	Short: "Resolve attendees into leads and book attendance triggers",
	Long: `Reads a JSON attendee export and runs each row through entity resolution.
Attendees at companies not yet in the store are admitted only after an
oracle pre-screen; re-running the same export does not create duplicate
leads or triggers.`,
	Args: cobra.ExactArgs(1),
	RunE: runConferenceIngest,
}

func init() {
	conferenceIngestCmd.Flags().String("event", "", "event name used as the trigger dedup identity (required)")
	conferenceCmd.AddCommand(conferenceIngestCmd)
	rootCmd.AddCommand(conferenceCmd)
}

func runConferenceIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	event, _ := cmd.Flags().GetString("event")
	if event == "" {
		return eris.New("--event is required")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return eris.Wrap(err, "open attendee export")
	}
	defer f.Close()

	attendees, err := enrich.LoadAttendees(f)
	if err != nil {
		return err
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := newPipeline(s).IngestConference(ctx, enrich.ConferenceIngest{
		Event:     event,
		Attendees: attendees,
	})
	if report != nil {
		printReport(cmd, report)
	}
	return err
}
