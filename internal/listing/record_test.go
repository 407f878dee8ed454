package listing

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeKeys(t *testing.T, r Record) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestEmpty_AllFieldsPresentAndNull(t *testing.T) {
	m := decodeKeys(t, Empty("https://example.com/a"))

	require.Len(t, m, len(FieldNames)+1)
	for _, name := range FieldNames {
		v, ok := m[name]
		require.True(t, ok, "missing field %s", name)
		if name == "url" {
			assert.Equal(t, "https://example.com/a", v)
		} else {
			assert.Nil(t, v, "field %s", name)
		}
	}
	_, ok := m[MetaKey]
	assert.True(t, ok)
}

func TestFromFields_URLOverride(t *testing.T) {
	fields := map[string]any{
		"url":           "https://other.example.com",
		"listing_title": "Condo for sale",
		"price":         "RM 450,000",
		"bedrooms":      "3",
	}

	r := FromFields("https://example.com/listing/1", fields)

	assert.Equal(t, "https://example.com/listing/1", r.URL)
	assert.Equal(t, "Condo for sale", r.ListingTitle)
	assert.Equal(t, "RM 450,000", r.Price)
	assert.Equal(t, "3", r.Bedrooms)
	assert.Nil(t, r.Bathrooms)
}

func TestFromFields_MissingURLAndUnknownFields(t *testing.T) {
	fields := map[string]any{
		"phone_number": "0173238055",
		"agent_name":   "ignored",
		"sq_ft":        1200.0,
	}

	r := FromFields("https://example.com/x", fields)
	m := decodeKeys(t, r)

	assert.Equal(t, "https://example.com/x", m["url"])
	assert.Equal(t, "0173238055", m["phone_number"])
	assert.Equal(t, 1200.0, m["sq_ft"])
	_, ok := m["agent_name"]
	assert.False(t, ok)
	assert.Len(t, m, len(FieldNames)+1)
}

func TestFromFields_ExplicitNullStaysNull(t *testing.T) {
	r := FromFields("u", map[string]any{"area": nil})
	v, ok := r.Get("area")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRecord_JSONKeyOrder(t *testing.T) {
	data, err := json.Marshal(Empty("u"))
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(data))
	_, err = dec.Token() // {
	require.NoError(t, err)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}

	assert.Equal(t, append(append([]string{}, FieldNames...), MetaKey), keys)
}

func TestGet(t *testing.T) {
	r := FromFields("u", map[string]any{"state": "Selangor"})

	v, ok := r.Get("state")
	assert.True(t, ok)
	assert.Equal(t, "Selangor", v)

	v, ok = r.Get("url")
	assert.True(t, ok)
	assert.Equal(t, "u", v)

	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestNewMetadata_Success(t *testing.T) {
	prompt, resp, total := 100, 20, 120
	gem := 1500 * time.Millisecond
	crawl := 3 * time.Second
	tot := 5 * time.Second
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("MYT", 8*3600))

	m := NewMetadata(MetaInput{
		Status:         "SUCCESS",
		Model:          "gemini-2.5-flash-lite",
		Attempts:       1,
		Usage:          &Usage{PromptTokens: &prompt, ResponseTokens: &resp, TotalTokens: &total},
		GeminiDuration: &gem,
		CrawlDuration:  &crawl,
		TotalDuration:  &tot,
	}, now)

	assert.Equal(t, "SUCCESS", m.StatusKey)
	assert.Equal(t, "000000", m.StatusCode)
	require.NotNil(t, m.GeminiModel)
	assert.Equal(t, "gemini-2.5-flash-lite", *m.GeminiModel)
	assert.Equal(t, 1, m.GeminiAttempts)
	assert.Equal(t, 100, *m.GeminiPromptTokens)
	assert.Equal(t, 20, *m.GeminiRespTokens)
	assert.Equal(t, 120, *m.GeminiTotalTokens)
	assert.InDelta(t, 1.5, *m.GeminiDurationSec, 1e-9)
	assert.InDelta(t, 3.0, *m.CrawlDurationSec, 1e-9)
	assert.InDelta(t, 5.0, *m.TotalDurationSec, 1e-9)
	assert.Equal(t, "2025-03-03T21:06:07Z", m.TimestampUTC)
}

func TestNewMetadata_UnknownStatusAndNulls(t *testing.T) {
	m := NewMetadata(MetaInput{Status: "WHATEVER"}, time.Now())

	assert.Equal(t, "UNEXPECTED_ERROR", m.StatusKey)
	assert.Equal(t, "000999", m.StatusCode)
	assert.Nil(t, m.GeminiModel)
	assert.Nil(t, m.GeminiPromptTokens)
	assert.Nil(t, m.CrawlDurationSec)
	assert.Nil(t, m.TotalDurationSec)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"crawl_duration_sec":null`)
	assert.Contains(t, string(data), `"gemini_total_tokens":null`)
}

func TestNewMetadata_NegativeDurationClamped(t *testing.T) {
	d := -time.Second
	m := NewMetadata(MetaInput{Status: "SUCCESS", CrawlDuration: &d}, time.Now())
	require.NotNil(t, m.CrawlDurationSec)
	assert.Equal(t, 0.0, *m.CrawlDurationSec)
}
