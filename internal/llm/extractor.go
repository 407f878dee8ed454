package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/prompts"
	"github.com/jonathan/listing-extractor/internal/schemas"
)

const promptFile = "listing.json"

// Request is the input of one extraction attempt.
type Request struct {
	URL             string
	Content         string // page text, already truncated
	PhoneCandidates []string
}

// Response is a successfully decoded extraction.
type Response struct {
	Fields   map[string]any
	Usage    *listing.Usage
	Duration time.Duration
	Raw      string
}

// Extractor turns page content into listing fields. Each call is one attempt;
// retries belong to the caller.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// ListingExtractor implements Extractor on top of a Client.
type ListingExtractor struct {
	client Client
	logger *zap.Logger
}

// NewListingExtractor creates an extractor that calls client.
func NewListingExtractor(client Client, logger *zap.Logger) *ListingExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingExtractor{client: client, logger: logger}
}

// Model returns the model identifier of the underlying client.
func (e *ListingExtractor) Model() string {
	return e.client.Model()
}

// Extract builds the prompt, calls the model once and decodes the answer. A
// call failure yields *APICallError, an undecodable answer *ParseError.
// Answers that decode but do not match the listing schema are logged and
// still returned.
func (e *ListingExtractor) Extract(ctx context.Context, req Request) (*Response, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	completion, err := e.client.GenerateJSON(ctx, prompt, ListingResponseSchema())
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(completion.Text)
	e.logger.Debug("gemini raw response",
		zap.String("url", req.URL),
		zap.String("response", truncate(raw, 300)),
	)

	fields, err := DecodeFields(raw)
	if err != nil {
		return nil, &ParseError{Raw: raw, Usage: completion.Usage, Duration: completion.Duration, Cause: err}
	}

	if verr := schemas.ValidateListing(CleanJSONBlock(raw)); verr != nil {
		e.logger.Warn("gemini response does not match listing schema",
			zap.String("url", req.URL),
			zap.Error(verr),
		)
	}

	return &Response{
		Fields:   fields,
		Usage:    completion.Usage,
		Duration: completion.Duration,
		Raw:      raw,
	}, nil
}

// DecodeFields decodes a model answer into a field map. The answer must be a
// JSON object, optionally wrapped in a code fence.
func DecodeFields(raw string) (map[string]any, error) {
	cleaned := CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("response is null")
	}
	return fields, nil
}

// BuildPrompt renders the extraction prompt for req.
func BuildPrompt(req Request) (string, error) {
	template, err := prompts.Get(promptFile, "extract-listing")
	if err != nil {
		return "", err
	}
	hints, err := prompts.Get(promptFile, "phone-hints")
	if err != nil {
		return "", err
	}

	candidates, err := json.Marshal(nonNil(req.PhoneCandidates))
	if err != nil {
		return "", fmt.Errorf("failed to encode phone candidates: %w", err)
	}

	return prompts.Format(template, map[string]string{
		"FieldNames": strings.Join(listing.FieldNames, ", "),
		"URL":        req.URL,
		"Hints":      prompts.Format(hints, map[string]string{"Candidates": string(candidates)}),
		"Content":    req.Content,
	}), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
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
