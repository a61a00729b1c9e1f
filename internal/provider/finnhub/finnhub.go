// Package finnhub is a minimal client for Finnhub's symbol lookup.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"stonkboard/internal/provider"
)

const (
	providerName = "Finnhub"
	baseURL      = "https://finnhub.io/api/v1"
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Symbol is one lookup match.
type Symbol struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

type SearchResponse struct {
	Count  int      `json:"count"`
	Result []Symbol `json:"result"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	header     http.Header
}

type Option func(*Client)

// WithBaseURL sets the API root, e.g. "https://finnhub.io/api/v1".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

func NewClient(token string, options ...Option) (*Client, error) {
	client := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return client, nil
}

func (c *Client) Name() string { return providerName }

// Search looks up symbols matching query.
// https://finnhub.io/docs/api/symbol-search
func (c *Client) Search(ctx context.Context, query string) (SearchResponse, error) {
	params := url.Values{"q": {query}}
	if c.token != "" {
		params.Set("token", c.token)
	}
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResponse{}, &provider.TransportError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return SearchResponse{}, &provider.RateLimitError{Provider: providerName, Note: res.Status}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return SearchResponse{}, &provider.BadResponseError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return SearchResponse{}, &provider.MalformedResponseError{Reason: "decoding search response", Err: err}
	}
	if out.Result == nil {
		out.Result = []Symbol{}
	}
	return out, nil
}
