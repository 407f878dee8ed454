// Package main provides the entry point for the listing extraction CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "listing_agent",
	Short: "Property listing extractor",
	Long: `listing_agent renders property listing pages in a headless browser, asks Gemini to
extract the listing fields and writes one JSON array with a record per URL.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
