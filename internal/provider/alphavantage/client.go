package alphavantage

import (
	"net/http"
	"net/url"
)

const (
	providerName = "AlphaVantage"
	baseURL      = "https://www.alphavantage.co/query"
)

// HTTPClient sends Alpha Vantage requests.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Alpha Vantage query API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
	query      url.Values // merged into every call; carries apikey
}

// Option is a configuration option for the Alpha Vantage client.
type Option func(*Client)

// WithBaseURL points the client at another /query endpoint, such as a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sends requests through httpClient, usually an httpx.Client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds header to every request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient returns a client that authenticates with key. An empty key is
// allowed; Alpha Vantage then answers every call with an error body.
func NewClient(key string, options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		client.query.Set("apikey", key)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

func (c *Client) Name() string { return providerName }
