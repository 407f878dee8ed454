// Package status provides the closed catalog of outcome codes reported for every processed URL.
package status

// Definition is a single registered outcome.
type Definition struct {
	Code        string `json:"cd_std"`
	Name        string `json:"cd_name"`
	Description string `json:"cd_desc"`
}

// Status names produced or reserved by the pipeline.
const (
	Success        = "SUCCESS"
	PartialSuccess = "PARTIAL_SUCCESS"

	CrawlFailed           = "CRAWL_FAILED"
	NoContentExtracted    = "NO_CONTENT_EXTRACTED"
	CrawlTimeout          = "CRAWL_TIMEOUT"
	CrawlInteractionError = "CRAWL_INTERACTION_ERROR"
	CrawlHTTPError        = "CRAWL_HTTP_ERROR"
	CrawlBlockedOrCaptcha = "CRAWL_BLOCKED_OR_CAPTCHA"

	GeminiCallFailed          = "GEMINI_CALL_FAILED"
	GeminiJSONParseFailed     = "GEMINI_JSON_PARSE_FAILED"
	GeminiRateLimited         = "GEMINI_RATE_LIMITED"
	GeminiAuthFailed          = "GEMINI_AUTH_FAILED"
	GeminiModelNotFound       = "GEMINI_MODEL_NOT_FOUND"
	GeminiInvalidOutputSchema = "GEMINI_INVALID_OUTPUT_SCHEMA"

	ConfigError           = "CONFIG_ERROR"
	ConfigMissingEnv      = "CONFIG_MISSING_ENV"
	ConfigInvalidEnvValue = "CONFIG_INVALID_ENV_VALUE"

	InputError        = "INPUT_ERROR"
	InputURLListEmpty = "INPUT_URL_LIST_EMPTY"
	InputURLInvalid   = "INPUT_URL_INVALID"

	SystemError             = "SYSTEM_ERROR"
	SystemIOError           = "SYSTEM_IO_ERROR"
	SystemDependencyMissing = "SYSTEM_DEPENDENCY_MISSING"

	UnexpectedError = "UNEXPECTED_ERROR"
)

// definitions is ordered by code. Groups:
// 0000xx success, 0001xx crawl, 0002xx LLM, 0003xx config, 0004xx input,
// 0005xx system, 000999 catch-all.
var definitions = []Definition{
	{"000000", Success, "Request completed successfully with a high-confidence extraction result."},
	{"000050", PartialSuccess, "Request completed but some fields are missing, low-confidence, or degraded."},

	{"000100", CrawlFailed, "Generic crawl failure (navigation, page load, or unknown browser error)."},
	{"000101", NoContentExtracted, "Page loaded but no usable content could be extracted (empty or stripped body)."},
	{"000102", CrawlTimeout, "Crawl exceeded the configured timeout before the wait condition was satisfied."},
	{"000103", CrawlInteractionError, "Crawl failed during page interaction (clicks/JS execution/scrolling)."},
	{"000104", CrawlHTTPError, "Crawl received a non-2xx HTTP status code from the target URL."},
	{"000105", CrawlBlockedOrCaptcha, "Crawl appears to be blocked by anti-bot measures, CAPTCHA, or similar protection."},

	{"000200", GeminiCallFailed, "Generic Gemini API failure (network, service, or SDK-level error)."},
	{"000201", GeminiJSONParseFailed, "Gemini returned a response that could not be parsed as the expected JSON schema."},
	{"000202", GeminiRateLimited, "Gemini request was rejected due to rate limiting or quota exhaustion."},
	{"000203", GeminiAuthFailed, "Gemini request failed due to invalid or missing authentication credentials."},
	{"000204", GeminiModelNotFound, "Requested Gemini model does not exist or is not available to this project."},
	{"000205", GeminiInvalidOutputSchema, "Gemini returned structured output that violates the declared JSON schema."},

	{"000300", ConfigError, "Generic configuration error (invalid settings or incompatible options)."},
	{"000301", ConfigMissingEnv, "Required environment variable is missing (e.g. GEMINI_API_KEY)."},
	{"000302", ConfigInvalidEnvValue, "Environment variable is present but has an invalid or unsupported value."},

	{"000400", InputError, "Generic input error (malformed data or unsupported format)."},
	{"000401", InputURLListEmpty, "No URLs were provided for processing (urls.txt empty or filtered out)."},
	{"000402", InputURLInvalid, "One or more URLs are invalid, malformed, or use an unsupported scheme."},

	{"000500", SystemError, "Generic system/runtime error (unexpected exception in the pipeline)."},
	{"000501", SystemIOError, "Filesystem or I/O operation failed (read/write permissions, missing file, etc.)."},
	{"000502", SystemDependencyMissing, "Required library, binary, or runtime dependency is missing or not installed."},

	{"000999", UnexpectedError, "An unexpected, uncategorised error occurred that does not match other codes."},
}

var (
	byName = make(map[string]Definition, len(definitions))
	byCode = make(map[string]Definition, len(definitions))
)

func init() {
	for _, d := range definitions {
		if _, dup := byName[d.Name]; dup {
			panic("status: duplicate name " + d.Name)
		}
		if _, dup := byCode[d.Code]; dup {
			panic("status: duplicate code " + d.Code)
		}
		byName[d.Name] = d
		byCode[d.Code] = d
	}
}

// Lookup returns the definition registered under name.
// Unknown names resolve to UNEXPECTED_ERROR; Lookup never fails.
func Lookup(name string) Definition {
	if d, ok := byName[name]; ok {
		return d
	}
	return byName[UnexpectedError]
}

// ByCode returns the definition with the given code, if any.
func ByCode(code string) (Definition, bool) {
	d, ok := byCode[code]
	return d, ok
}

// All returns a copy of every registered definition in code order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}
