package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/jonathan/listing-extractor/internal/listing"
)

// Completion is the raw answer of one model call.
type Completion struct {
	Text     string
	Usage    *listing.Usage // nil when the service did not report usage
	Duration time.Duration
}

// Client is an abstraction over the LLM provider.
type Client interface {
	// GenerateJSON asks the model for a JSON document shaped by schema.
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (*Completion, error)
	// Model returns the model identifier used for calls.
	Model() string
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client  *genai.Client
	config  *Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		config:  config,
		limiter: newLimiter(config.RequestsPerMinute),
		logger:  logger,
	}, nil
}

// newLimiter returns nil when requestsPerMinute is not positive.
func newLimiter(requestsPerMinute float64) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1)
}

// GenerateJSON calls the model in JSON mode with schema as the response schema.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (*Completion, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APICallError{Model: c.config.Model, Cause: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	duration := time.Since(start)
	if err != nil {
		return nil, &APICallError{Model: c.config.Model, Cause: err}
	}

	usage := usageFromResponse(resp)
	if usage != nil {
		c.logger.Debug("gemini usage",
			zap.Intp("prompt_tokens", usage.PromptTokens),
			zap.Intp("response_tokens", usage.ResponseTokens),
			zap.Intp("total_tokens", usage.TotalTokens),
		)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, &ParseError{Usage: usage, Duration: duration, Cause: err}
	}

	return &Completion{Text: text, Usage: usage, Duration: duration}, nil
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ListingResponseSchema describes the JSON object the model must return: every
// listing field as a nullable string, with url required.
func ListingResponseSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(listing.FieldNames))
	for _, name := range listing.FieldNames {
		props[name] = &genai.Schema{Type: genai.TypeString, Nullable: name != "url"}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   []string{"url"},
	}
}

func usageFromResponse(resp *genai.GenerateContentResponse) *listing.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	m := resp.UsageMetadata
	return &listing.Usage{
		PromptTokens:   intPtr(m.PromptTokenCount),
		ResponseTokens: intPtr(m.CandidatesTokenCount),
		TotalTokens:    intPtr(m.TotalTokenCount),
	}
}

func intPtr(v int32) *int {
	n := int(v)
	return &n
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
