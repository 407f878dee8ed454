package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/llm"
)

// Outcome is the result of the bounded extraction loop: either *Success or
// *Exhausted.
type Outcome interface {
	AttemptsUsed() int
	outcome()
}

// Success means attempt Attempts returned a decodable answer.
type Success struct {
	Response *llm.Response
	Attempts int
}

// Exhausted means every attempt failed. Usage and Duration come from the last
// attempt that reached the model, if any did.
type Exhausted struct {
	Attempts int
	LastErr  error
	Usage    *listing.Usage
	Duration *time.Duration
}

func (s *Success) AttemptsUsed() int   { return s.Attempts }
func (e *Exhausted) AttemptsUsed() int { return e.Attempts }

func (*Success) outcome()   {}
func (*Exhausted) outcome() {}

// attemptLoop holds the state of the extraction loop for one URL.
type attemptLoop struct {
	max      int
	attempt  int
	lastErr  error
	usage    *listing.Usage
	duration *time.Duration
}

// extractWithRetry calls the extractor at most maxAttempts times, stopping at
// the first success. Attempts run back to back. The loop also stops when ctx
// is done.
func (p *Processor) extractWithRetry(ctx context.Context, req llm.Request, maxAttempts int, log *zap.Logger) Outcome {
	loop := &attemptLoop{max: maxAttempts}

	for loop.attempt < loop.max {
		if err := ctx.Err(); err != nil {
			if loop.lastErr == nil {
				loop.lastErr = err
			}
			break
		}

		loop.attempt++
		p.emit(req.URL, StageExtracting, "gemini attempt", loop.attempt, nil)
		log.Debug("gemini attempt", zap.Int("attempt", loop.attempt), zap.Int("max_attempts", loop.max))

		resp, err := p.extractor.Extract(ctx, req)
		if err == nil {
			return &Success{Response: resp, Attempts: loop.attempt}
		}

		loop.record(err)
		log.Warn("gemini attempt failed",
			zap.Int("attempt", loop.attempt),
			zap.Error(err),
		)
	}

	return &Exhausted{
		Attempts: loop.attempt,
		LastErr:  loop.lastErr,
		Usage:    loop.usage,
		Duration: loop.duration,
	}
}

// record stores err as the last error and keeps usage figures from answers
// that could not be decoded.
func (l *attemptLoop) record(err error) {
	l.lastErr = err

	var pe *llm.ParseError
	if errors.As(err, &pe) {
		if pe.Usage != nil {
			l.usage = pe.Usage
		}
		d := pe.Duration
		l.duration = &d
	}
}
