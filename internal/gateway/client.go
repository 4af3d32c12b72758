package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/crux/internal/endpoint"
)

// APIKeyHeader carries the backend API key when one is configured.
const APIKeyHeader = "x-api-key"

const (
	defaultUserAgent      = "crux/0.1"
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 120 * time.Second
	defaultProbeTimeout   = 5 * time.Second

	// HealthPath is the liveness endpoint used by Probe.
	HealthPath = "/health"
)

// EndpointSource yields the endpoint for the next request.
// *endpoint.Resolver implements it.
type EndpointSource interface {
	Resolve() endpoint.Endpoint
}

var _ EndpointSource = (*endpoint.Resolver)(nil)

// Client talks to the route-analysis backend. It is safe for concurrent use;
// the endpoint is resolved once per request.
type Client struct {
	source    EndpointSource
	http      *http.Client
	userAgent string
	logger    *zap.Logger

	requestTimeout time.Duration
	uploadTimeout  time.Duration
	probeTimeout   time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeouts sets the default JSON, upload and probe timeouts. Zero keeps
// the current value.
func WithTimeouts(request, upload, probe time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.requestTimeout = request
		}
		if upload > 0 {
			c.uploadTimeout = upload
		}
		if probe > 0 {
			c.probeTimeout = probe
		}
	}
}

// NewClient builds a Client. A nil source resolves to the default endpoint.
func NewClient(source EndpointSource, opts ...Option) *Client {
	if source == nil {
		source = endpoint.NewResolver()
	}
	c := &Client{
		source:         source,
		http:           &http.Client{},
		userAgent:      defaultUserAgent,
		logger:         zap.NewNop(),
		requestTimeout: defaultRequestTimeout,
		uploadTimeout:  defaultUploadTimeout,
		probeTimeout:   defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns what the next request will resolve to.
func (c *Client) Endpoint() endpoint.Endpoint {
	return c.source.Resolve()
}

// Request describes a JSON call. Path may carry a query string.
type Request struct {
	Method  string
	Path    string
	Body    any
	Timeout time.Duration // zero uses the client's request timeout
}

// Send performs a JSON request and decodes a 2xx response into dest.
// dest may be nil when the response body is not needed.
func (c *Client) Send(ctx context.Context, req Request, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	data, err := c.execute(ctx, req.Method, req.Path, body, header, c.timeout(req.Timeout, c.requestTimeout))
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := decodeJSON(data, dest); err != nil {
		return &Error{Kind: KindDecode, Message: "Unexpected response from server.", Err: fmt.Errorf("decode %s: %w", req.Path, err)}
	}
	return nil
}

// Do performs req and decodes the response as T.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	err := c.Send(ctx, req, &out)
	return out, err
}

// RequestData performs a request without a body and returns the raw
// response bytes.
func (c *Client) RequestData(ctx context.Context, method, path string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.execute(ctx, method, path, nil, http.Header{}, c.requestTimeout)
}

// Probe issues a short GET against the liveness endpoint. Callers use it to
// fail fast before an expensive upload.
func (c *Client) Probe(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	_, err := c.execute(ctx, http.MethodGet, HealthPath, nil, http.Header{}, c.probeTimeout)
	return err
}

// Upload describes a multipart/form-data upload.
type Upload struct {
	Path     string
	Data     []byte
	Filename string
	MIMEType string
	Fields   map[string]string
	Timeout  time.Duration // zero uses the client's upload timeout
}

// Upload sends a multipart body with the string fields first and a single
// "file" part last, and returns the raw response bytes.
func (c *Client) Upload(ctx context.Context, up Upload) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, contentType, err := buildMultipart(up)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	c.logger.Debug("uploading",
		zap.String("path", up.Path),
		zap.String("filename", up.Filename),
		zap.Int("bytes", len(up.Data)),
	)
	return c.execute(ctx, http.MethodPost, up.Path, bytes.NewReader(body), header, c.timeout(up.Timeout, c.uploadTimeout))
}

func (c *Client) timeout(requested, fallback time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	return fallback
}

func (c *Client) execute(ctx context.Context, method, path string, body io.Reader, header http.Header, timeout time.Duration) ([]byte, error) {
	if method == "" {
		method = http.MethodGet
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ep := c.source.Resolve()
	reqURL, err := buildURL(ep.URL, path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if key := strings.TrimSpace(ep.APIKey); key != "" {
		req.Header.Set(APIKeyHeader, key)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		classified := classifyTransport(err, reqURL)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", reqURL.String()),
			zap.Stringer("kind", classified.Kind),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, classified
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(fmt.Errorf("read response: %w", err), reqURL)
	}

	c.logger.Debug("request finished",
		zap.String("method", method),
		zap.String("url", reqURL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(path, resp.StatusCode, data)
	}
	return data, nil
}

func buildURL(base *url.URL, path string) (*url.URL, error) {
	if base == nil {
		base = endpoint.Resolve()
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	u.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + strings.TrimLeft(rel.EscapedPath(), "/")
	u.RawQuery = rel.RawQuery
	u.Fragment = ""
	return &u, nil
}

func decodeJSON(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}
