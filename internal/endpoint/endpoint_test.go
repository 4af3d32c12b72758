package endpoint

import (
	"sync"
	"testing"
)

func TestResolve_OverrideWithoutScheme(t *testing.T) {
	got := Resolve("192.168.1.5:9000", "")
	if got.String() != "http://192.168.1.5:9000" {
		t.Fatalf("Resolve = %q, want %q", got.String(), "http://192.168.1.5:9000")
	}
}

func TestResolve_PrecedenceAndFallback(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"no candidates", nil, DefaultBaseURL},
		{"all blank", []string{"", "   ", "\n"}, DefaultBaseURL},
		{"first wins", []string{"http://a.local:1", "http://b.local:2"}, "http://a.local:1"},
		{"skips unparsable", []string{"http://bad host", "b.local:2"}, "http://b.local:2"},
		{"skips scheme only", []string{"http://", "https://c.example"}, "https://c.example"},
		{"skips bad port", []string{"host:notaport", "d.local"}, "http://d.local"},
		{"skips missing scheme name", []string{"://x", "e.local"}, "http://e.local"},
		{"all invalid falls back", []string{"http://", "http://:8000", "http://%zz"}, DefaultBaseURL},
		{"drops query and fragment", []string{"https://api.example.com/v1/?x=1#frag"}, "https://api.example.com/v1"},
		{"trims whitespace", []string{"  10.0.0.2:8000  "}, "http://10.0.0.2:8000"},
		{"ipv6 literal", []string{"[::1]:8000"}, "http://[::1]:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidates...)
			if got.String() != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.candidates, got.String(), tt.want)
			}
			if got.Scheme == "" || got.Host == "" {
				t.Fatalf("Resolve(%q) returned %q without scheme or host", tt.candidates, got.String())
			}
		})
	}
}

func TestResolve_ReturnsIndependentDefault(t *testing.T) {
	a := Resolve()
	a.Host = "mutated:1"
	if b := Resolve(); b.String() != DefaultBaseURL {
		t.Fatalf("default was mutated: %q", b.String())
	}
}

func TestHostPort(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"", "8000", ""},
		{"192.168.1.5", "", "192.168.1.5"},
		{" 192.168.1.5 ", " 9000 ", "192.168.1.5:9000"},
		{"::1", "8000", "[::1]:8000"},
		{"[::1]", "8000", "[::1]:8000"},
	}
	for _, tt := range tests {
		if got := HostPort(tt.host, tt.port); got != tt.want {
			t.Fatalf("HostPort(%q, %q) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " key ", "other"); got != "key" {
		t.Fatalf("FirstNonEmpty = %q, want key", got)
	}
	if got := FirstNonEmpty("", " "); got != "" {
		t.Fatalf("FirstNonEmpty = %q, want empty", got)
	}
}

type mutableLayer struct {
	mu  sync.RWMutex
	url string
}

func (m *mutableLayer) BaseURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.url
}

func (m *mutableLayer) APIKey() string { return "" }

func (m *mutableLayer) set(u string) {
	m.mu.Lock()
	m.url = u
	m.mu.Unlock()
}

func TestResolver_LayersAndKeys(t *testing.T) {
	override := &mutableLayer{}
	r := NewResolver(
		nil,
		override,
		Static{Key: "bundled-key"},
		Static{URL: HostPort("10.0.0.9", "8000")},
	)

	ep := r.Resolve()
	if ep.BaseURL() != "http://10.0.0.9:8000" {
		t.Fatalf("BaseURL = %q, want bundled host/port", ep.BaseURL())
	}
	if ep.APIKey != "bundled-key" {
		t.Fatalf("APIKey = %q, want bundled-key", ep.APIKey)
	}

	override.set("192.168.1.5:9000")
	if got := r.Resolve().BaseURL(); got != "http://192.168.1.5:9000" {
		t.Fatalf("BaseURL after override = %q, want override", got)
	}

	override.set("not a url")
	if got := r.Resolve().BaseURL(); got != "http://10.0.0.9:8000" {
		t.Fatalf("BaseURL after bad override = %q, want bundled fallback", got)
	}
}

func TestResolver_NilAndEmpty(t *testing.T) {
	var r *Resolver
	if got := r.Resolve(); got.BaseURL() != DefaultBaseURL || got.APIKey != "" {
		t.Fatalf("nil resolver = %+v, want default", got)
	}
	if got := NewResolver().Resolve(); got.BaseURL() != DefaultBaseURL {
		t.Fatalf("empty resolver = %q, want default", got.BaseURL())
	}
}
