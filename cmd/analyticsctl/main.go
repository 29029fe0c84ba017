// Command analyticsctl is the operator tool for the section analytics
// service: offline reports, recorder replays and read-token management.
package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "analyticsctl",
		Short:        "Operate the section engagement analytics service",
		Version:      Version,
		SilenceUsage: true,
	}
	root.AddCommand(
		newReportCmd(),
		newReplayCmd(),
		newTokenCmd(),
		newHashKeyCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
