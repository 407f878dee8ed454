// Package runner drives a whole run: URLs are processed one at a time in
// input order and the records are written once at the end.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/observability"
	"github.com/jonathan/listing-extractor/internal/pipeline"
	"github.com/jonathan/listing-extractor/internal/status"
)

// Processor produces the record of one URL. *pipeline.Processor implements it.
type Processor interface {
	Process(ctx context.Context, url string) listing.Record
}

// Sink receives every record of a run after the loop. *db.DB implements it.
type Sink interface {
	SaveRecords(ctx context.Context, runID uuid.UUID, records []listing.Record) (int64, error)
}

// Options configures a Runner.
type Options struct {
	OutputFile string
	Model      string // reported in SYSTEM_ERROR metadata
	Sink       Sink   // optional
	Printer    *observability.Printer
	Now        func() time.Time
}

// Runner processes URL lists.
type Runner struct {
	processor Processor
	opts      Options
	logger    *zap.Logger
}

// Result describes a finished run.
type Result struct {
	RunID    uuid.UUID
	Records  []listing.Record
	Duration time.Duration
	Written  bool // false when there was nothing to write
}

// New creates a Runner.
func New(processor Processor, opts Options, logger *zap.Logger) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{processor: processor, opts: opts, logger: logger}
}

// Run processes urls sequentially and writes one JSON array with a record per
// URL, in input order. Per-URL failures become records. An empty list is
// logged and nothing is written. The returned error only reports output
// failures.
func (r *Runner) Run(ctx context.Context, urls []string) (*Result, error) {
	start := r.opts.Now()
	result := &Result{RunID: uuid.New()}
	log := r.logger.With(zap.String("run_id", result.RunID.String()))

	if len(urls) == 0 {
		def := status.Lookup(status.InputURLListEmpty)
		log.Warn("No URLs found",
			zap.String("status_key", def.Name),
			zap.String("status_code", def.Code),
		)
		return result, nil
	}

	log.Info("run started", zap.Int("urls", len(urls)), zap.String("output_file", r.opts.OutputFile))

	records := make([]listing.Record, 0, len(urls))
	for i, url := range urls {
		log.Info("processing URL", zap.Int("index", i+1), zap.Int("total", len(urls)), zap.String("url", url))
		record := r.processOne(ctx, url, log)
		if r.opts.Printer != nil {
			r.opts.Printer.PrintRecord(&record)
		}
		records = append(records, record)
	}
	result.Records = records

	if err := r.persist(ctx, result.RunID, records, log); err != nil {
		result.Duration = r.opts.Now().Sub(start)
		return result, err
	}
	result.Written = true
	result.Duration = r.opts.Now().Sub(start)

	if r.opts.Printer != nil {
		summary := observability.Summarize(records)
		summary.RunID = result.RunID.String()
		summary.OutputFile = r.opts.OutputFile
		summary.Duration = result.Duration
		r.opts.Printer.PrintRunSummary(summary)
	}
	log.Info("run finished",
		zap.Int("records", len(records)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// processOne never lets a URL abort the run: a panic in the pipeline becomes
// a url-only SYSTEM_ERROR record.
func (r *Runner) processOne(ctx context.Context, url string, log *zap.Logger) (record listing.Record) {
	defer func() {
		if v := recover(); v != nil {
			log.Error("unhandled error while processing URL",
				zap.String("url", url),
				zap.String("panic", fmt.Sprint(v)),
				zap.Stack("stack"),
			)
			record = r.systemErrorRecord(url)
		}
	}()

	record = r.processor.Process(ctx, url)
	if record.URL != url {
		log.Warn("pipeline returned a record for another URL", zap.String("url", url), zap.String("record_url", record.URL))
		record.URL = url
	}
	if record.Meta == nil {
		log.Error("pipeline returned a record without metadata", zap.String("url", url))
		record = r.systemErrorRecord(url)
	}
	return record
}

func (r *Runner) systemErrorRecord(url string) listing.Record {
	record := listing.Empty(url)
	record.Meta = listing.NewMetadata(listing.MetaInput{
		Status: status.SystemError,
		Model:  r.opts.Model,
	}, r.opts.Now())
	return record
}

// persist writes the output file and, when configured, the sink concurrently.
func (r *Runner) persist(ctx context.Context, runID uuid.UUID, records []listing.Record, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := WriteOutput(r.opts.OutputFile, records); err != nil {
			return err
		}
		log.Info("output written", zap.String("path", r.opts.OutputFile), zap.Int("records", len(records)))
		return nil
	})

	if r.opts.Sink != nil {
		g.Go(func() error {
			n, err := r.opts.Sink.SaveRecords(gctx, runID, records)
			if err != nil {
				return eris.Wrap(err, "save records to database")
			}
			log.Info("records saved to database", zap.Int64("rows", n))
			return nil
		})
	}

	return g.Wait()
}

// ProgressLogger returns a pipeline callback that narrates progress at debug level.
func ProgressLogger(logger *zap.Logger) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		fields := []zap.Field{
			zap.String("url", e.URL),
			zap.String("stage", string(e.Stage)),
		}
		if e.Attempt > 0 {
			fields = append(fields, zap.Int("attempt", e.Attempt))
		}
		logger.Debug(e.Message, fields...)
	}
}
