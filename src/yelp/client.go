// Package yelp is a client for the business directory API.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"foodie/src/logger"
	"foodie/src/types"
)

const (
	DefaultHost        = "https://api.yelp.com"
	businessSearchPath = "/v3/businesses/search"
	businessPath       = "/v3/businesses/"
)

var _ types.Directory = (*Client)(nil)

type Client struct {
	host string
	http *http.Client
}

type searchResponse struct {
	Businesses *[]types.Business `json:"businesses"`
}

// NewClient returns a client that authenticates every request with apiKey
// as a bearer token. A positive timeout bounds each call.
func NewClient(host, apiKey string, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = timeout

	return &Client{
		host: strings.TrimRight(host, "/"),
		http: httpClient,
	}
}

// Search runs a location search and returns the raw entries.
func (c *Client) Search(ctx context.Context, q types.SearchQuery) ([]types.Business, error) {
	params := url.Values{}
	params.Set("location", q.Location)
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	if q.ReservationTime != "" {
		params.Set("reservation_time", q.ReservationTime)
	}
	if q.ReservationDate != "" {
		params.Set("reservation_date", q.ReservationDate)
	}
	if q.ReservationCovers > 0 {
		params.Set("reservation_covers", strconv.Itoa(q.ReservationCovers))
	}
	if q.Categories != "" {
		params.Set("categories", q.Categories)
	}

	var resp searchResponse
	if err := c.get(ctx, businessSearchPath+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Businesses == nil {
		return nil, fmt.Errorf("%w: missing businesses", types.ErrMalformedResponse)
	}
	return *resp.Businesses, nil
}

// Business fetches the detail of a single entry, categories included.
func (c *Client) Business(ctx context.Context, id string) (*types.Business, error) {
	var b types.Business
	if err := c.get(ctx, businessPath+url.PathEscape(id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("directory GET %s", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", types.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	return nil
}
