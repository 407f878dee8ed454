// Package pipeline turns one listing URL into one record: fetch the page,
// extract fields with bounded retries, attach metadata.
package pipeline

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/listing-extractor/internal/fetch"
	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/llm"
	"github.com/jonathan/listing-extractor/internal/phone"
	"github.com/jonathan/listing-extractor/internal/status"
)

// Fetcher renders a page. *fetch.Session implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Options configures a Processor.
type Options struct {
	MaxAttempts     int
	MaxContentChars int
	OnProgress      ProgressCallback
	Now             func() time.Time
}

// Processor runs the per-URL state machine. It holds no per-URL state and
// is used sequentially.
type Processor struct {
	fetcher   Fetcher
	extractor llm.Extractor
	opts      Options
	logger    *zap.Logger
}

// NewProcessor creates a Processor. MaxAttempts below 1 is treated as 1.
func NewProcessor(fetcher Fetcher, extractor llm.Extractor, opts Options, logger *zap.Logger) *Processor {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
	}
}

// Process produces the record for url. It never fails: fetch failures yield
// CRAWL_FAILED, exhausted extraction yields GEMINI_CALL_FAILED.
func (p *Processor) Process(ctx context.Context, url string) listing.Record {
	start := p.opts.Now()
	log := p.logger.With(zap.String("url", url))

	p.emit(url, StageFetching, "fetching page", 0, nil)
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil || page == nil {
		log.Error("crawl failed", zap.Error(err))
		p.emit(url, StageDone, status.CrawlFailed, 0, nil)
		record := listing.Empty(url)
		record.Meta = listing.NewMetadata(listing.MetaInput{
			Status: status.CrawlFailed,
			Model:  p.extractor.Model(),
		}, p.opts.Now())
		return record
	}

	crawlDuration := page.Duration
	text, origin := page.Text()
	log.Debug("page fetched",
		zap.Duration("crawl_duration", crawlDuration),
		zap.Int("status_code", page.StatusCode),
		zap.Int("html_len", len(page.RawHTML)),
		zap.Int("cleaned_html_len", len(page.CleanedHTML)),
		zap.Int("markdown_len", len(page.Markdown)),
		zap.String("text_origin", string(origin)),
	)

	p.emit(url, StageExtracting, "extracting fields", 0, nil)
	candidates := phone.Candidates(page.RawHTML)
	log.Debug("phone candidates", zap.Strings("candidates", candidates))

	content := TruncateRunes(text, p.opts.MaxContentChars)
	log.Debug("content for gemini",
		zap.Int("chars", utf8.RuneCountInString(content)),
		zap.String("snippet", TruncateRunes(content, 500)),
	)

	outcome := p.extractWithRetry(ctx, llm.Request{
		URL:             url,
		Content:         content,
		PhoneCandidates: candidates,
	}, p.opts.MaxAttempts, log)

	var (
		record         listing.Record
		statusName     string
		usage          *listing.Usage
		geminiDuration *time.Duration
	)
	switch o := outcome.(type) {
	case *Success:
		record = listing.FromFields(url, o.Response.Fields)
		statusName = status.Success
		usage = o.Response.Usage
		d := o.Response.Duration
		geminiDuration = &d
	case *Exhausted:
		log.Error("gemini failed after all attempts",
			zap.Int("attempts", o.Attempts),
			zap.Error(o.LastErr),
		)
		record = listing.Empty(url)
		statusName = status.GeminiCallFailed
		usage = o.Usage
		geminiDuration = o.Duration
	}

	now := p.opts.Now()
	total := now.Sub(start)
	record.Meta = listing.NewMetadata(listing.MetaInput{
		Status:         statusName,
		Model:          p.extractor.Model(),
		Attempts:       outcome.AttemptsUsed(),
		Usage:          usage,
		GeminiDuration: geminiDuration,
		CrawlDuration:  &crawlDuration,
		TotalDuration:  &total,
	}, now)

	p.emit(url, StageDone, statusName, outcome.AttemptsUsed(), record.Meta)
	return record
}

// TruncateRunes returns at most n runes of s. n <= 0 disables truncation.
func TruncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
