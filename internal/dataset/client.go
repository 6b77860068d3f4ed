package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
)

// Fetcher retrieves one dataset file by reference.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	Fetch(ctx context.Context, file string) (*geojson.FeatureCollection, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the static data endpoint.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	ext       string
}

const (
	defaultDataURL   = "http://127.0.0.1:8740"
	defaultUserAgent = "chronomap/0.1"
	defaultExt       = "geojson"
	requestTimeout   = 30 * time.Second
)

// FetchError reports a dataset that could not be retrieved or decoded.
type FetchError struct {
	File   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.File, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.File, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewClient builds a Client rooted at dataURL (scheme optional).
func NewClient(dataURL string) (*Client, error) {
	base, err := parseBaseURL(dataURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		ext:       defaultExt,
	}, nil
}

// WithExt changes the file extension appended to dataset names. Empty keeps
// the current one.
func (c *Client) WithExt(ext string) *Client {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext != "" {
		c.ext = ext
	}
	return c
}

// Fetch retrieves /data/{file}.{ext}. Non-2xx statuses and payloads that are
// not feature collections are reported as *FetchError.
func (c *Client) Fetch(ctx context.Context, file string) (*geojson.FeatureCollection, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, fmt.Errorf("dataset file is empty")
	}

	rel := &url.URL{Path: path.Join("/", c.baseURL.Path, "data", file+"."+c.ext)}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{File: file, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{File: file, Status: resp.StatusCode}
	}
	fc, err := geodata.Decode(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{File: file, Err: err}
	}
	return fc, nil
}

func parseBaseURL(dataURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(dataURL)
	if trimmed == "" {
		trimmed = defaultDataURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse data_url %q: %w", dataURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
