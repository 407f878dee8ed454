package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-extractor/internal/schemas"
	schemafiles "github.com/jonathan/listing-extractor/schemas"
)

var schemaCommand = &cobra.Command{
	Use:   "schema",
	Short: "Print the listing JSON schema, or validate an output file with --check",
	RunE:  runSchemaCmd,
}

var (
	schemaOutput bool
	schemaCheck  string
	schemaList   bool
)

func init() {
	schemaCommand.Flags().BoolVar(&schemaOutput, "output", false, "Print the output file schema instead of the listing schema")
	schemaCommand.Flags().StringVar(&schemaCheck, "check", "", "Validate this output file against the output schema")
	schemaCommand.Flags().BoolVar(&schemaList, "list", false, "List the embedded schema files")

	rootCmd.AddCommand(schemaCommand)
}

func runSchemaCmd(cmd *cobra.Command, _ []string) error {
	if schemaList {
		for _, name := range schemafiles.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	if schemaCheck != "" {
		if err := schemas.ValidateOutputFile(schemaCheck); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", schemaCheck)
		return nil
	}

	name := schemafiles.ListingFile
	if schemaOutput {
		name = schemafiles.OutputFile
	}
	content, err := schemafiles.Read(name)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
