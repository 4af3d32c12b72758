package endpoint

// Layer is one configuration source. Either value may be blank.
type Layer interface {
	BaseURL() string
	APIKey() string
}

// Static is a fixed Layer, used for flags, environment and config files.
type Static struct {
	URL string
	Key string
}

func (s Static) BaseURL() string { return s.URL }
func (s Static) APIKey() string  { return s.Key }

// Resolver walks its layers in precedence order, highest first.
type Resolver struct {
	layers []Layer
}

// NewResolver builds a Resolver. Nil layers are skipped.
func NewResolver(layers ...Layer) *Resolver {
	kept := make([]Layer, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &Resolver{layers: kept}
}

// Resolve reads every layer and returns the resolved endpoint. It never
// fails. A nil Resolver yields the default endpoint.
func (r *Resolver) Resolve() Endpoint {
	if r == nil {
		return Endpoint{URL: Resolve()}
	}
	urls := make([]string, 0, len(r.layers))
	keys := make([]string, 0, len(r.layers))
	for _, l := range r.layers {
		urls = append(urls, l.BaseURL())
		keys = append(keys, l.APIKey())
	}
	return Endpoint{URL: Resolve(urls...), APIKey: FirstNonEmpty(keys...)}
}
