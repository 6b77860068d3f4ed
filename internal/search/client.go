// Package search looks up places through a Nominatim-compatible geocoder.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

const (
	DefaultURL     = "https://nominatim.openstreetmap.org"
	DefaultCountry = "ua"
	resultLimit    = 5
	acceptLanguage = "uk, en"
	userAgent      = "chronomap/0.1"
)

// Result is one geocoded place.
type Result struct {
	Name     string
	Division string
	Point    orb.Point
}

// Provider resolves free-text queries.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

var _ Provider = (*Client)(nil)

// Client queries Nominatim's /search endpoint.
type Client struct {
	baseURL *url.URL
	country string
	http    *http.Client
}

// NewClient builds a client. Empty arguments select the public Nominatim
// instance and Ukraine.
func NewClient(baseURL, country string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("search url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL: u,
		country: country,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type place struct {
	DisplayName string `json:"display_name"`
	Lon         string `json:"lon"`
	Lat         string `json:"lat"`
}

// Search returns up to five places matching query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/search"
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(resultLimit))
	q.Set("countrycodes", c.country)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search: unexpected status %s", resp.Status)
	}
	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	results := make([]Result, 0, len(places))
	for _, p := range places {
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		if errLon != nil || errLat != nil {
			continue
		}
		name, division := splitDisplayName(p.DisplayName)
		results = append(results, Result{Name: name, Division: division, Point: orb.Point{lon, lat}})
	}
	if len(results) > resultLimit {
		results = results[:resultLimit]
	}
	return results, nil
}

// splitDisplayName takes the first comma part as the name and the next two
// as the division.
func splitDisplayName(display string) (string, string) {
	parts := strings.Split(display, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	name := parts[0]
	var division []string
	for _, p := range parts[1:min(3, len(parts))] {
		if p != "" {
			division = append(division, p)
		}
	}
	return name, strings.Join(division, ", ")
}
