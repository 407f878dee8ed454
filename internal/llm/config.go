// Package llm extracts structured listing fields from page text with Gemini.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model settings used for extraction.
type Config struct {
	Provider          Provider
	Model             string
	Temperature       float32
	RequestsPerMinute float64 // 0 disables pacing
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       "gemini-2.5-flash-lite",
		Temperature: 0.1,
	}
}

// WithModel returns a copy of c using model.
func (c *Config) WithModel(model string) *Config {
	next := *c
	next.Model = model
	return &next
}
