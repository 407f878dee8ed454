package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownNames(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{Success, "000000"},
		{PartialSuccess, "000050"},
		{CrawlFailed, "000100"},
		{CrawlBlockedOrCaptcha, "000105"},
		{GeminiCallFailed, "000200"},
		{GeminiInvalidOutputSchema, "000205"},
		{ConfigMissingEnv, "000301"},
		{InputURLListEmpty, "000401"},
		{SystemError, "000500"},
		{UnexpectedError, "000999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Lookup(tt.name)
			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.code, d.Code)
			assert.NotEmpty(t, d.Description)
		})
	}
}

func TestLookup_UnknownNameFallsBack(t *testing.T) {
	for _, name := range []string{"", "success", "NOT_A_STATUS", "SUCCESS ", "000000"} {
		d := Lookup(name)
		assert.Equal(t, UnexpectedError, d.Name, "name %q", name)
		assert.Equal(t, "000999", d.Code)
	}
}

func TestLookup_StableAcrossCalls(t *testing.T) {
	for _, d := range All() {
		first := Lookup(d.Name)
		second := Lookup(d.Name)
		assert.Equal(t, d, first)
		assert.Equal(t, first, second)
	}
}

func TestRegistry_UniqueNamesAndCodes(t *testing.T) {
	all := All()
	require.Len(t, all, 24)

	names := make(map[string]bool)
	codes := make(map[string]bool)
	for _, d := range all {
		assert.False(t, names[d.Name], "duplicate name %s", d.Name)
		assert.False(t, codes[d.Code], "duplicate code %s", d.Code)
		names[d.Name] = true
		codes[d.Code] = true
	}
}

func TestByCode(t *testing.T) {
	d, ok := ByCode("000200")
	require.True(t, ok)
	assert.Equal(t, GeminiCallFailed, d.Name)

	_, ok = ByCode("123456")
	assert.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "MUTATED"

	assert.Equal(t, Success, Lookup(Success).Name)
	assert.Equal(t, Success, All()[0].Name)
}
