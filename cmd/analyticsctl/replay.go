package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"sectionpulse/api/recorder"
)

func newReplayCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Replay a scripted visit through the recorder and print the final record",
		Long: "Replay drives the session recorder with the timed events of a YAML script.\n" +
			"With --endpoint every flushed record is posted to the ingest endpoint in order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := recorder.LoadScript(args[0])
			if err != nil {
				return err
			}
			records := script.Replay()
			if len(records) == 0 {
				return fmt.Errorf("script %s produced no records", args[0])
			}

			if endpoint != "" {
				submitter := recorder.NewHTTPSubmitter(endpoint)
				for i, r := range records {
					if err := submitter.Submit(cmd.Context(), r); err != nil {
						return fmt.Errorf("submit flush %d: %w", i+1, err)
					}
				}
				log.Printf("Submitted %d flushes for session %s to %s", len(records), records[0].SessionID, endpoint)
			}
			return writeJSON(cmd.OutOrStdout(), records[len(records)-1])
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "ingest URL to submit flushed records to")
	return cmd
}
