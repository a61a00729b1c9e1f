package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stonkboard/internal/provider"
)

const (
	functionSymbolSearch = "SYMBOL_SEARCH"
	functionGlobalQuote  = "GLOBAL_QUOTE"
	functionEarnings     = "EARNINGS"
)

// maxErrorBody caps how much of a failed response is kept in a BadResponseError.
const maxErrorBody = 2 << 10

// Search looks up symbols matching query.
func (c *Client) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	raw, err := c.request(ctx, functionSymbolSearch, url.Values{"keywords": {query}})
	if err != nil {
		return provider.SearchResponse{}, err
	}
	return ParseSearchResponse(raw, SearchResultMap)
}

// Quote retrieves the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	raw, err := c.request(ctx, functionGlobalQuote, url.Values{"symbol": {symbol}})
	if err != nil {
		return provider.Quote{}, err
	}
	quote, err := ParseQuoteResponse(raw, QuoteMap)
	if err != nil {
		return provider.Quote{}, err
	}
	quote.FetchedAt = time.Now().UTC()
	return quote, nil
}

// Earnings retrieves the quarterly earnings history for symbol.
func (c *Client) Earnings(ctx context.Context, symbol string) (provider.EarningsResponse, error) {
	raw, err := c.request(ctx, functionEarnings, url.Values{"symbol": {symbol}})
	if err != nil {
		return provider.EarningsResponse{}, err
	}
	earnings, err := ParseEarningsResponse(raw, EarningsReportMap)
	if err != nil {
		return provider.EarningsResponse{}, err
	}
	earnings.FetchedAt = time.Now().UTC()
	return earnings, nil
}

// request performs one GET for fn and decodes the JSON object body.
func (c *Client) request(ctx context.Context, fn string, params url.Values) (map[string]any, error) {
	query := maps.Clone(c.query)
	for key, values := range params {
		query[key] = values
	}
	query.Set("function", fn)

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &provider.TransportError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &provider.TransportError{Err: fmt.Errorf("reading body: %w", err)}
	}

	var raw map[string]any
	decodeErr := json.Unmarshal(body, &raw)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		// The rate-limit notice wins over the status code.
		if decodeErr == nil && IsRateLimited(raw) {
			return nil, checkPayload(raw)
		}
		return nil, &provider.BadResponseError{StatusCode: res.StatusCode, Body: preview(body)}
	}
	if decodeErr != nil {
		return nil, &provider.MalformedResponseError{Reason: "decoding " + strings.ToLower(fn) + " response", Err: decodeErr}
	}
	if raw == nil {
		return nil, &provider.MalformedResponseError{Reason: "empty " + strings.ToLower(fn) + " response"}
	}
	return raw, nil
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
