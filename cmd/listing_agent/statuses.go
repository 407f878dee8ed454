package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-extractor/internal/observability"
	"github.com/jonathan/listing-extractor/internal/status"
)

var statusesCommand = &cobra.Command{
	Use:   "statuses",
	Short: "List the status codes used in record metadata",
	RunE:  runStatusesCmd,
}

var statusesJSON bool

func init() {
	statusesCommand.Flags().BoolVar(&statusesJSON, "json", false, "Print as a JSON array")

	rootCmd.AddCommand(statusesCommand)
}

func runStatusesCmd(cmd *cobra.Command, _ []string) error {
	defs := status.All()
	if statusesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintStatuses(defs)
	return nil
}
