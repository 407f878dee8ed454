package fetch

import (
	"net/url"
	"strings"
)

// Site is a known property listing portal.
type Site string

const (
	// SiteMudah is mudah.my
	SiteMudah Site = "mudah"
	// SitePropertyGuru is propertyguru.com.my
	SitePropertyGuru Site = "propertyguru"
	// SiteIProperty is iproperty.com.my
	SiteIProperty Site = "iproperty"
	// SiteUnknown is an unrecognized portal
	SiteUnknown Site = "unknown"
)

// DetectSite identifies the listing portal from a URL.
func DetectSite(urlStr string) Site {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SiteUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "mudah.my" || strings.HasSuffix(host, ".mudah.my"):
		return SiteMudah
	case strings.Contains(host, "propertyguru."):
		return SitePropertyGuru
	case strings.Contains(host, "iproperty."):
		return SiteIProperty
	default:
		return SiteUnknown
	}
}
