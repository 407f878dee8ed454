// Package listing defines the property-listing record written for every processed URL.
package listing

import (
	"time"

	"github.com/jonathan/listing-extractor/internal/status"
)

// FieldNames is the declared field set of a Record, in output order.
var FieldNames = []string{
	"url",
	"listing_title",
	"project_name",
	"area",
	"state",
	"price",
	"sq_ft",
	"bedrooms",
	"bathrooms",
	"property_type",
	"carpark",
	"floor_range",
	"phone_number",
	"description",
}

// MetaKey is the reserved key under which Metadata is attached to a record.
const MetaKey = "meta"

// Record is one extracted listing. Attribute fields hold whatever the extraction
// service returned for them; nil serialises as JSON null, never omitted.
type Record struct {
	URL          string    `json:"url"`
	ListingTitle any       `json:"listing_title"`
	ProjectName  any       `json:"project_name"`
	Area         any       `json:"area"`
	State        any       `json:"state"`
	Price        any       `json:"price"`
	SqFt         any       `json:"sq_ft"`
	Bedrooms     any       `json:"bedrooms"`
	Bathrooms    any       `json:"bathrooms"`
	PropertyType any       `json:"property_type"`
	Carpark      any       `json:"carpark"`
	FloorRange   any       `json:"floor_range"`
	PhoneNumber  any       `json:"phone_number"`
	Description  any       `json:"description"`
	Meta         *Metadata `json:"meta"`
}

// Empty returns a url-only record with every attribute null.
func Empty(url string) Record {
	return Record{URL: url}
}

// FromFields builds a record from an extraction response. The url is always the
// given url regardless of what fields contains; missing names stay null and
// names outside FieldNames are ignored.
func FromFields(url string, fields map[string]any) Record {
	r := Empty(url)
	for name, ptr := range r.attributes() {
		if v, ok := fields[name]; ok {
			*ptr = v
		}
	}
	return r
}

// Get returns the value of a declared attribute and whether name is declared.
func (r *Record) Get(name string) (any, bool) {
	if name == "url" {
		return r.URL, true
	}
	ptr, ok := r.attributes()[name]
	if !ok {
		return nil, false
	}
	return *ptr, true
}

// attributes maps every declared field except url to its storage.
func (r *Record) attributes() map[string]*any {
	return map[string]*any{
		"listing_title": &r.ListingTitle,
		"project_name":  &r.ProjectName,
		"area":          &r.Area,
		"state":         &r.State,
		"price":         &r.Price,
		"sq_ft":         &r.SqFt,
		"bedrooms":      &r.Bedrooms,
		"bathrooms":     &r.Bathrooms,
		"property_type": &r.PropertyType,
		"carpark":       &r.Carpark,
		"floor_range":   &r.FloorRange,
		"phone_number":  &r.PhoneNumber,
		"description":   &r.Description,
	}
}

// Usage holds token counts reported by the extraction service.
type Usage struct {
	PromptTokens   *int
	ResponseTokens *int
	TotalTokens    *int
}

// Metadata describes how a record was produced.
type Metadata struct {
	StatusKey          string   `json:"status_key"`
	StatusCode         string   `json:"status_code"`
	GeminiModel        *string  `json:"gemini_model"`
	GeminiAttempts     int      `json:"gemini_attempts"`
	GeminiPromptTokens *int     `json:"gemini_prompt_tokens"`
	GeminiRespTokens   *int     `json:"gemini_response_tokens"`
	GeminiTotalTokens  *int     `json:"gemini_total_tokens"`
	GeminiDurationSec  *float64 `json:"gemini_duration_sec"`
	CrawlDurationSec   *float64 `json:"crawl_duration_sec"`
	TotalDurationSec   *float64 `json:"total_duration_sec"`
	TimestampUTC       string   `json:"timestamp_utc"`
}

// MetaInput carries the figures available when a record's metadata is assembled.
type MetaInput struct {
	Status         string
	Model          string
	Attempts       int
	Usage          *Usage
	GeminiDuration *time.Duration
	CrawlDuration  *time.Duration
	TotalDuration  *time.Duration
}

// TimestampLayout is the UTC timestamp format used in metadata.
const TimestampLayout = "2006-01-02T15:04:05Z"

// NewMetadata resolves the status through the registry and stamps the metadata with now.
func NewMetadata(in MetaInput, now time.Time) *Metadata {
	def := status.Lookup(in.Status)

	m := &Metadata{
		StatusKey:         def.Name,
		StatusCode:        def.Code,
		GeminiAttempts:    in.Attempts,
		GeminiDurationSec: seconds(in.GeminiDuration),
		CrawlDurationSec:  seconds(in.CrawlDuration),
		TotalDurationSec:  seconds(in.TotalDuration),
		TimestampUTC:      now.UTC().Format(TimestampLayout),
	}
	if in.Model != "" {
		model := in.Model
		m.GeminiModel = &model
	}
	if in.Usage != nil {
		m.GeminiPromptTokens = in.Usage.PromptTokens
		m.GeminiRespTokens = in.Usage.ResponseTokens
		m.GeminiTotalTokens = in.Usage.TotalTokens
	}
	return m
}

func seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	if s < 0 {
		s = 0
	}
	return &s
}
