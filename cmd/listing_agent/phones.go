package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-extractor/internal/observability"
	"github.com/jonathan/listing-extractor/internal/phone"
)

var phonesCommand = &cobra.Command{
	Use:   "phones <html-file>",
	Short: "Print the phone candidates found in a saved HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhonesCmd,
}

var phonesJSON bool

func init() {
	phonesCommand.Flags().BoolVar(&phonesJSON, "json", false, "Print as a JSON array")

	rootCmd.AddCommand(phonesCommand)
}

func runPhonesCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	candidates := phone.Candidates(string(data))
	if phonesJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(candidates)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPhoneCandidates(args[0], candidates)
	return nil
}
