package config

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// SiteConfig holds per-host crawl settings from the config file.
type SiteConfig struct {
	// Cookie is sent as the Cookie header, e.g. "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the maximum depth. Zero keeps the global value.
	Depth int `yaml:"depth,omitempty"`

	// Threads overrides the concurrency limit.
	Threads int `yaml:"threads,omitempty"`

	// RateLimit overrides the requests per second.
	RateLimit float64 `yaml:"rateLimit,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy routes this host's requests through a proxy.
	Proxy string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .paramscan configuration file.
type File struct {
	// Sites maps a host (host[:port], as in the start URL) to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the defaults merged with the entry for host.
// Hosts are matched case-insensitively.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	site, ok := cf.Sites[host]
	if !ok {
		for key, sc := range cf.Sites {
			if strings.EqualFold(key, host) {
				site, ok = sc, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Depth != 0 {
		result.Depth = site.Depth
	}
	if site.Threads != 0 {
		result.Threads = site.Threads
	}
	if site.RateLimit != 0 {
		result.RateLimit = site.RateLimit
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.Proxy != "" {
		result.Proxy = site.Proxy
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}

	return result
}

// headerName returns the canonical name of a "Name: value" header line.
func headerName(line string) string {
	name, _, _ := strings.Cut(line, ":")
	return http.CanonicalHeaderKey(strings.TrimSpace(name))
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
