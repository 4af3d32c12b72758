// Package endpoint resolves where the backend lives from an ordered list of
// configuration layers.
//
// Resolution is total: the first candidate that parses into a URL with a
// scheme and host wins, and DefaultBaseURL is used when none does. Layers are
// read on every resolution, so a changed override affects the next request
// only, never one already in flight.
package endpoint

import (
	"net"
	"net/url"
	"strings"
)

// DefaultBaseURL is where a development backend listens out of the box.
const DefaultBaseURL = "http://127.0.0.1:8000"

var defaultURL = mustParse(DefaultBaseURL)

// Endpoint is a resolved backend address plus the key to send with it.
type Endpoint struct {
	URL    *url.URL
	APIKey string
}

// BaseURL returns the endpoint's address as a string.
func (e Endpoint) BaseURL() string {
	if e.URL == nil {
		return DefaultBaseURL
	}
	return e.URL.String()
}

// Resolve returns the first candidate that parses into an absolute URL with
// a scheme and host. Candidates without a scheme are treated as http.
// Query, fragment and trailing slashes are dropped.
func Resolve(candidates ...string) *url.URL {
	for _, candidate := range candidates {
		if u, ok := parse(candidate); ok {
			return u
		}
	}
	u := *defaultURL
	return &u
}

// Parse reports whether s is a usable base URL and returns it normalized.
func Parse(s string) (*url.URL, bool) {
	return parse(s)
}

// FirstNonEmpty returns the first value that is not blank, trimmed.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// HostPort joins split host and port settings into a candidate. It returns
// "" when host is blank.
func HostPort(host, port string) string {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	if host == "" {
		return ""
	}
	if port == "" {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), port)
}

func parse(candidate string) (*url.URL, bool) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return nil, false
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, false
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, true
}

func mustParse(s string) *url.URL {
	u, ok := parse(s)
	if !ok {
		panic("endpoint: default base URL " + s + " does not parse")
	}
	return u
}
