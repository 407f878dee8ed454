package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

// Options configures a browser Session.
type Options struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	PageTimeout    time.Duration // bound on a whole Fetch
	WaitForTimeout time.Duration // bound on the readiness wait
	SettleDelay    time.Duration // pause between readiness and capture
	PollInterval   time.Duration
	Readiness      Readiness
	ClickGroups    []ClickGroup
}

// Session owns one headless browser and a single tab reused for every fetch.
// A Session is not safe for concurrent Fetch calls.
type Session struct {
	opts        Options
	logger      *zap.Logger
	conv        *converter.Converter
	clickScript string

	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	browserCtx    context.Context

	mu         sync.Mutex
	statusCode int
	finalURL   string
	closed     bool
}

// NewSession starts the browser. The browser lives until Close or until ctx is cancelled.
func NewSession(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.ClickGroups == nil {
		opts.ClickGroups = DefaultClickGroups()
	}

	script, err := ClickScript(opts.ClickGroups)
	if err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	s := &Session{
		opts:          opts,
		logger:        logger,
		conv:          NewMarkdownConverter(),
		clickScript:   script,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		browserCtx:    browserCtx,
	}

	chromedp.ListenTarget(browserCtx, s.onEvent)

	// The first Run launches the browser and opens the tab.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		s.Close()
		return nil, &Error{Message: "failed to start browser", Cause: err}
	}

	logger.Info("browser session started",
		zap.Bool("headless", opts.Headless),
		zap.Int("viewport_width", opts.ViewportWidth),
		zap.Int("viewport_height", opts.ViewportHeight),
	)
	return s, nil
}

// onEvent records the status of the most recent document response.
func (s *Session) onEvent(ev interface{}) {
	e, ok := ev.(*network.EventResponseReceived)
	if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
		return
	}
	s.mu.Lock()
	s.statusCode = int(e.Response.Status)
	s.finalURL = e.Response.URL
	s.mu.Unlock()
}

func (s *Session) resetResponse() {
	s.mu.Lock()
	s.statusCode = 0
	s.finalURL = ""
	s.mu.Unlock()
}

func (s *Session) lastResponse() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCode, s.finalURL
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancelBrowser()
	s.cancelAlloc()
	s.logger.Debug("browser session closed")
	return nil
}

// Fetch navigates to pageURL, runs the interaction script, waits for the page
// to look ready, pauses for SettleDelay and captures the page. Interaction
// failures are logged and ignored. An unready page is still captured.
func (s *Session) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if pageURL == "" {
		return nil, &Error{URL: pageURL, Message: "empty URL"}
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, &Error{URL: pageURL, Message: "browser session closed"}
	}

	start := time.Now()
	s.resetResponse()

	var (
		tabCtx context.Context
		cancel context.CancelFunc
	)
	if s.opts.PageTimeout > 0 {
		tabCtx, cancel = context.WithTimeout(s.browserCtx, s.opts.PageTimeout)
	} else {
		tabCtx, cancel = context.WithCancel(s.browserCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	log := s.logger.With(zap.String("url", pageURL))

	if err := chromedp.Run(tabCtx, chromedp.Navigate(pageURL)); err != nil {
		return nil, &Error{URL: pageURL, Message: "navigation failed", Cause: err}
	}

	clicked := s.interact(tabCtx, log)
	ready := s.waitReady(tabCtx)
	if !ready {
		log.Debug("page not ready before timeout, capturing anyway",
			zap.Duration("wait_for_timeout", s.opts.WaitForTimeout),
		)
	}

	if err := sleep(tabCtx, s.opts.SettleDelay); err != nil {
		return nil, &Error{URL: pageURL, Message: "interrupted before capture", Cause: err}
	}

	var rawHTML, location string
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &rawHTML, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return nil, &Error{URL: pageURL, Message: "capture failed", Cause: err}
	}

	status, responseURL := s.lastResponse()
	if location == "" {
		location = responseURL
	}

	result := &Result{
		URL:        pageURL,
		FinalURL:   location,
		StatusCode: status,
		RawHTML:    rawHTML,
		Ready:      ready,
		Clicked:    clicked,
	}

	cleaned, title, err := CleanHTML(rawHTML)
	if err != nil {
		log.Warn("failed to clean HTML", zap.Error(err))
	} else {
		result.CleanedHTML = cleaned
		result.Title = title
		md, err := ToMarkdown(s.conv, cleaned, location)
		if err != nil {
			log.Warn("failed to convert page to markdown", zap.Error(err))
		} else {
			result.Markdown = md
		}
	}

	result.Duration = time.Since(start)
	log.Debug("page captured",
		zap.String("site", string(DetectSite(pageURL))),
		zap.Int("status_code", status),
		zap.Bool("ready", ready),
		zap.Int("clicked", clicked),
		zap.Int("html_bytes", len(rawHTML)),
		zap.Int("markdown_chars", len(result.Markdown)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// interact scrolls to the top, then the bottom, then clicks expander and
// contact buttons. It returns the number of elements clicked.
func (s *Session) interact(ctx context.Context, log *zap.Logger) int {
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(scrollTopJS, nil),
		chromedp.Evaluate(scrollBottomJS, nil),
	); err != nil {
		log.Debug("scroll failed", zap.Error(err))
	}

	var clicked int
	if err := chromedp.Run(ctx, chromedp.Evaluate(s.clickScript, &clicked)); err != nil {
		log.Debug("interaction script failed", zap.Error(err))
		return 0
	}
	return clicked
}

// waitReady polls the body text until the readiness predicate holds or
// WaitForTimeout elapses.
func (s *Session) waitReady(ctx context.Context) bool {
	deadline := time.Now().Add(s.opts.WaitForTimeout)
	for {
		var text string
		err := chromedp.Run(ctx, chromedp.Evaluate(bodyTextJS, &text))
		if err == nil && s.opts.Readiness.Ready(text) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		if sleep(ctx, s.opts.PollInterval) != nil {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
