// Package config builds the immutable run configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when neither GEMINI_API_KEY nor GOOGLE_API_KEY is set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) is not set")

// DefaultReadyPattern matches text that looks like a loaded property listing.
const DefaultReadyPattern = `(?i)(RM\s*\d[\d,. ]*|sq\.ft|bedroom|bathroom|for sale)`

// Config is built once at startup and never modified afterwards.
type Config struct {
	URLsFile   string `validate:"required"`
	OutputFile string `validate:"required"`

	// Browser
	Headless       bool
	SettleDelay    time.Duration `validate:"gte=0"`
	WaitForTimeout time.Duration `validate:"gt=0"`
	PageTimeout    time.Duration `validate:"gt=0"`
	ViewportWidth  int           `validate:"min=320"`
	ViewportHeight int           `validate:"min=200"`

	// Readiness policy
	ReadyMinChars int    `validate:"gte=0"`
	ReadyPattern  string `validate:"required"`

	// Extraction
	MaxContentChars    int     `validate:"gt=0"`
	GeminiModel        string  `validate:"required"`
	GeminiMaxAttempts  int     `validate:"gte=1"`
	GeminiTemperature  float64 `validate:"gte=0,lte=2"`
	GeminiRequestsPerM float64 `validate:"gte=0"`
	APIKey             string  `validate:"required"`

	// Optional Postgres sink
	DatabaseURL string

	Log LogConfig
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// InvalidValueError reports a key whose value could not be parsed or validated.
type InvalidValueError struct {
	Key     string
	Value   string
	Message string
}

func (e *InvalidValueError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Key, e.Message)
	}
	return fmt.Sprintf("invalid value for %s: %s", e.Key, e.Message)
}

// apiKeyKey is bound to GEMINI_API_KEY and GOOGLE_API_KEY only.
const apiKeyKey = "GEMINI_API_KEY"

// defaults holds every recognised key. Keys double as environment variable names.
var defaults = map[string]any{
	"URLS_FILE":                  "urls.txt",
	"OUTPUT_FILE":                "output.json",
	"HEADLESS":                   "true",
	"DELAY_BEFORE_RETURN_HTML":   "2.0",
	"WAIT_FOR_TIMEOUT":           "20",
	"PAGE_TIMEOUT":               "60",
	"VIEWPORT_WIDTH":             "1280",
	"VIEWPORT_HEIGHT":            "720",
	"READY_MIN_CHARS":            "1000",
	"READY_PATTERN":              DefaultReadyPattern,
	"MAX_CONTENT_CHARS":          "20000",
	"GEMINI_MODEL":               "gemini-2.5-flash-lite",
	"GEMINI_MAX_ATTEMPTS":        "2",
	"GEMINI_TEMPERATURE":         "0.1",
	"GEMINI_REQUESTS_PER_MINUTE": "0",
	"DATABASE_URL":               "",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "console",
}

// Load resolves the configuration from defaults, an optional listing_agent.yaml found
// in configPaths (or the working directory), and the environment, in increasing priority.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("listing_agent")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.BindEnv(apiKeyKey, "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind api key")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	p := parser{v: v}

	cfg := &Config{
		URLsFile:           p.str("URLS_FILE"),
		OutputFile:         p.str("OUTPUT_FILE"),
		Headless:           p.boolean("HEADLESS"),
		SettleDelay:        p.seconds("DELAY_BEFORE_RETURN_HTML"),
		WaitForTimeout:     p.seconds("WAIT_FOR_TIMEOUT"),
		PageTimeout:        p.seconds("PAGE_TIMEOUT"),
		ViewportWidth:      p.integer("VIEWPORT_WIDTH"),
		ViewportHeight:     p.integer("VIEWPORT_HEIGHT"),
		ReadyMinChars:      p.integer("READY_MIN_CHARS"),
		ReadyPattern:       p.str("READY_PATTERN"),
		MaxContentChars:    p.integer("MAX_CONTENT_CHARS"),
		GeminiModel:        p.str("GEMINI_MODEL"),
		GeminiMaxAttempts:  p.integer("GEMINI_MAX_ATTEMPTS"),
		GeminiTemperature:  p.float("GEMINI_TEMPERATURE"),
		GeminiRequestsPerM: p.float("GEMINI_REQUESTS_PER_MINUTE"),
		APIKey:             p.str(apiKeyKey),
		DatabaseURL:        p.str("DATABASE_URL"),
		Log: LogConfig{
			Level:  strings.ToLower(p.str("LOG_LEVEL")),
			Format: strings.ToLower(p.str("LOG_FORMAT")),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.APIKey == "" {
		return nil, eris.Wrap(ErrMissingAPIKey, "config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and that the readiness pattern compiles.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &InvalidValueError{
				Key:     fe.Field(),
				Value:   fmt.Sprint(fe.Value()),
				Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
			}
		}
		return eris.Wrap(err, "config: validate")
	}
	if _, err := regexp.Compile(c.ReadyPattern); err != nil {
		return &InvalidValueError{Key: "READY_PATTERN", Value: c.ReadyPattern, Message: err.Error()}
	}
	return nil
}

// parser reads typed values from viper and keeps the first parse error.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = &InvalidValueError{Key: key, Value: raw, Message: err.Error()}
	}
}

func (p *parser) boolean(key string) bool {
	raw := p.str(key)
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return b
}

func (p *parser) integer(key string) int {
	raw := p.str(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return n
}

func (p *parser) float(key string) float64 {
	raw := p.str(key)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
	}
	return f
}

// seconds parses a (possibly fractional) number of seconds.
func (p *parser) seconds(key string) time.Duration {
	f := p.float(key)
	return time.Duration(f * float64(time.Second))
}
