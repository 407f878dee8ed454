package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/listing-extractor/internal/config"
	"github.com/jonathan/listing-extractor/internal/db"
	"github.com/jonathan/listing-extractor/internal/fetch"
	"github.com/jonathan/listing-extractor/internal/llm"
	"github.com/jonathan/listing-extractor/internal/observability"
	"github.com/jonathan/listing-extractor/internal/pipeline"
	"github.com/jonathan/listing-extractor/internal/runner"
	"github.com/jonathan/listing-extractor/internal/schemas"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Extract every listing in the URL file",
	Long: `Reads the URL file (one URL per line, blank lines and '#' comments ignored), processes
the URLs one at a time in a single browser session and writes all records to the output
file at the end of the run.

Settings come from the environment (and .env); --urls and --out override URLS_FILE and
OUTPUT_FILE.`,
	RunE: runListingCmd,
}

var (
	runURLsFile   string
	runOutputFile string
	runConfigPath string
	runValidate   bool
	runQuiet      bool
)

func init() {
	runCommand.Flags().StringVarP(&runURLsFile, "urls", "u", "", "Path to the URL list (defaults to URLS_FILE)")
	runCommand.Flags().StringVarP(&runOutputFile, "out", "o", "", "Output JSON file (defaults to OUTPUT_FILE)")
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Directory containing listing_agent.yaml")
	runCommand.Flags().BoolVar(&runValidate, "validate", false, "Validate the output file against the output schema after the run")
	runCommand.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Do not print per-record summaries")

	rootCmd.AddCommand(runCommand)
}

// loadRunConfig loads the configuration and applies flag overrides.
func loadRunConfig() (*config.Config, error) {
	if runURLsFile != "" {
		// Settings may live next to the URL list.
		_ = godotenv.Load(filepath.Join(filepath.Dir(runURLsFile), ".env"))
	}

	var paths []string
	if runConfigPath != "" {
		paths = append(paths, runConfigPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}

	if runURLsFile != "" {
		cfg.URLsFile = runURLsFile
	}
	if runOutputFile != "" {
		cfg.OutputFile = runOutputFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runListingCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadRunConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	urls, err := runner.ReadURLs(cfg.URLsFile)
	if err != nil {
		return err
	}

	var printer *observability.Printer
	if !runQuiet {
		printer = observability.NewPrinter(cmd.OutOrStdout())
	}
	runOpts := runner.Options{
		OutputFile: cfg.OutputFile,
		Model:      cfg.GeminiModel,
		Printer:    printer,
	}

	if len(urls) == 0 {
		_, err := runner.New(nil, runOpts, logger).Run(ctx, urls)
		return err
	}

	readiness, err := fetch.NewReadiness(cfg.ReadyMinChars, cfg.ReadyPattern)
	if err != nil {
		return err
	}

	session, err := fetch.NewSession(ctx, fetch.Options{
		Headless:       cfg.Headless,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		PageTimeout:    cfg.PageTimeout,
		WaitForTimeout: cfg.WaitForTimeout,
		SettleDelay:    cfg.SettleDelay,
		Readiness:      readiness,
	}, logger.Named("fetch"))
	if err != nil {
		return err
	}
	defer session.Close()

	llmConfig := llm.DefaultConfig().WithModel(cfg.GeminiModel)
	llmConfig.Temperature = float32(cfg.GeminiTemperature)
	llmConfig.RequestsPerMinute = cfg.GeminiRequestsPerM

	client, err := llm.NewGeminiClient(ctx, llmConfig, cfg.APIKey, logger.Named("llm"))
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		runOpts.Sink = database
	}

	processor := pipeline.NewProcessor(
		session,
		llm.NewListingExtractor(client, logger.Named("llm")),
		pipeline.Options{
			MaxAttempts:     cfg.GeminiMaxAttempts,
			MaxContentChars: cfg.MaxContentChars,
			OnProgress:      runner.ProgressLogger(logger.Named("pipeline")),
		},
		logger.Named("pipeline"),
	)

	if _, err := runner.New(processor, runOpts, logger).Run(ctx, urls); err != nil {
		return err
	}

	if runValidate {
		if err := schemas.ValidateOutputFile(cfg.OutputFile); err != nil {
			return fmt.Errorf("output validation: %w", err)
		}
		logger.Info("output file matches schema", zap.String("path", cfg.OutputFile))
	}
	return nil
}
