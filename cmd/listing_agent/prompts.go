package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-extractor/internal/prompts"
)

const listingPromptFile = "listing.json"

var promptsCommand = &cobra.Command{
	Use:   "prompts [key]",
	Short: "List the embedded extraction prompts, or print one by key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPromptsCmd,
}

func init() {
	rootCmd.AddCommand(promptsCommand)
}

func runPromptsCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		prompt, err := prompts.Get(listingPromptFile, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), prompt)
		return nil
	}

	keys, err := prompts.List(listingPromptFile)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}
