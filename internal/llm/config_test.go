package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.Model)
	assert.InDelta(t, 0.1, config.Temperature, 1e-6)
	assert.Zero(t, config.RequestsPerMinute)
}

func TestWithModel(t *testing.T) {
	original := DefaultConfig()
	modified := original.WithModel("gemini-2.5-pro")

	assert.Equal(t, "gemini-2.5-pro", modified.Model)
	assert.Equal(t, "gemini-2.5-flash-lite", original.Model)
	assert.Equal(t, original.Temperature, modified.Temperature)
}
