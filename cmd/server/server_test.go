package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stonkboard/internal/board"
	"stonkboard/internal/pinned"
	"stonkboard/internal/provider"
	"stonkboard/internal/provider/providertest"
)

func newTestServer(t *testing.T, api *providertest.API) (*httptest.Server, *board.Board) {
	t.Helper()
	b := board.New(api)
	srv := httptest.NewServer(newServer(b, zerolog.Nop()).routes())
	t.Cleanup(srv.Close)
	t.Cleanup(b.Close)
	return srv, b
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func gmeAPI() *providertest.API {
	return &providertest.API{
		SearchFunc: func(_ context.Context, q string) (provider.SearchResponse, error) {
			return provider.SearchResponse{BestMatches: []provider.SearchResult{
				{Symbol: "GME", Name: "GameStop Corp", Type: "Equity", Region: "United States", Currency: "USD", MatchScore: "1.0000"},
			}}, nil
		},
		QuoteFunc: func(context.Context, string) (provider.Quote, error) {
			return provider.Quote{Open: "175.0000", High: "182.0000", Low: "171.5000", Price: "180.0000", ChangePercent: "3.0000%"}, nil
		},
		EarningsFunc: func(context.Context, string) (provider.EarningsResponse, error) {
			return provider.EarningsResponse{Reports: []provider.EarningsReport{
				{FiscalDateEnding: "2021-09-30", ReportedEPS: "0.0181"},
				{FiscalDateEnding: "2021-06-30", ReportedEPS: "0.1435"},
			}}, nil
		},
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &providertest.API{})

	res := do(t, http.MethodGet, srv.URL+"/healthz", nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSearchPinLoadUnpin(t *testing.T) {
	api := gmeAPI()
	srv, b := newTestServer(t, api)

	// Act: search
	res := do(t, http.MethodGet, srv.URL+"/api/search?q=GME", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	found := decode[provider.SearchResponse](t, res)
	require.Len(t, found.BestMatches, 1)
	require.Equal(t, "GME", found.BestMatches[0].Symbol)

	// Act: pin it
	match := found.BestMatches[0]
	res = do(t, http.MethodPost, srv.URL+"/api/stocks", pinRequest{Symbol: match.Symbol, Name: match.Name})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	entry := decode[pinned.Entry](t, res)
	require.Equal(t, "GME~GameStop Corp", entry.Key)

	// Act: mount the stock panel
	res = do(t, http.MethodGet, srv.URL+"/api/stocks/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	loaded := decode[map[string]any](t, res)

	// Assert: one quote and one earnings request, price and change rendered
	require.Equal(t, []string{"GME"}, api.Calls("Quote"))
	require.Equal(t, []string{"GME"}, api.Calls("Earnings"))
	require.Equal(t, "$180.0000", loaded["price"])
	require.Equal(t, "🔼 3.0000%", loaded["change"])
	require.Equal(t, "fetched", loaded["state"])
	points := loaded["chart"].([]any)
	require.Len(t, points, 2)
	require.EqualValues(t, 1625011200, points[0].(map[string]any)["ts"])

	// Act: unpin
	res = do(t, http.MethodDelete, srv.URL+"/api/stocks/"+entry.ID, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	// Assert: the board is empty and the cache entry remains
	res = do(t, http.MethodGet, srv.URL+"/api/stocks", nil)
	list := decode[stocksResponse](t, res)
	require.Empty(t, list.Stocks)
	_, cached := b.Cache().Get("GME~GameStop Corp")
	require.True(t, cached)
}

func TestSearch_BlankQuery(t *testing.T) {
	api := gmeAPI()
	srv, _ := newTestServer(t, api)

	res := do(t, http.MethodGet, srv.URL+"/api/search?q=", nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
	found := decode[provider.SearchResponse](t, res)
	require.NotNil(t, found.BestMatches)
	require.Empty(t, found.BestMatches)
	require.Empty(t, api.Calls("Search"))
}

func TestSearch_RateLimited(t *testing.T) {
	api := &providertest.API{
		SearchFunc: func(context.Context, string) (provider.SearchResponse, error) {
			return provider.SearchResponse{}, &provider.RateLimitError{Provider: "fake"}
		},
	}
	srv, _ := newTestServer(t, api)

	res := do(t, http.MethodGet, srv.URL+"/api/search?q=GME", nil)

	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	body := decode[map[string]string](t, res)
	require.Equal(t, board.RateLimitMessage, body["error"])
}

func TestLoad_UnexpectedError(t *testing.T) {
	api := gmeAPI()
	api.EarningsFunc = func(context.Context, string) (provider.EarningsResponse, error) {
		return provider.EarningsResponse{}, &provider.BadResponseError{StatusCode: http.StatusInternalServerError}
	}
	srv, b := newTestServer(t, api)
	e, ok := b.Pin(provider.SearchResult{Symbol: "GME", Name: "GameStop Corp"})
	require.True(t, ok)

	res := do(t, http.MethodGet, srv.URL+"/api/stocks/"+e.ID, nil)

	require.Equal(t, http.StatusBadGateway, res.StatusCode)
	body := decode[map[string]string](t, res)
	require.Equal(t, board.UnexpectedMessage, body["error"])
	require.Zero(t, b.Cache().Len())

	// the listing shows the entry as errored
	res = do(t, http.MethodGet, srv.URL+"/api/stocks", nil)
	list := decode[stocksResponse](t, res)
	require.Len(t, list.Stocks, 1)
	require.Equal(t, "errored", list.Stocks[0].State)
	require.Equal(t, board.UnexpectedMessage, list.Stocks[0].Error)
}

func TestPin_Conflicts(t *testing.T) {
	srv, _ := newTestServer(t, gmeAPI())

	for _, sym := range []string{"A", "B", "C"} {
		res := do(t, http.MethodPost, srv.URL+"/api/stocks", pinRequest{Symbol: sym, Name: sym})
		require.Equal(t, http.StatusCreated, res.StatusCode)
	}

	// full board
	res := do(t, http.MethodPost, srv.URL+"/api/stocks", pinRequest{Symbol: "D", Name: "D"})
	require.Equal(t, http.StatusConflict, res.StatusCode)

	res = do(t, http.MethodGet, srv.URL+"/api/stocks", nil)
	list := decode[stocksResponse](t, res)
	require.Len(t, list.Stocks, 3)
	require.Equal(t, "A", list.Stocks[0].Symbol)
	require.Equal(t, "unfetched", list.Stocks[0].State)
}

func TestPin_Duplicate(t *testing.T) {
	srv, _ := newTestServer(t, gmeAPI())

	res := do(t, http.MethodPost, srv.URL+"/api/stocks", pinRequest{Symbol: "GME", Name: "GameStop Corp"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res = do(t, http.MethodPost, srv.URL+"/api/stocks", pinRequest{Symbol: "GME", Name: "GameStop Corp"})
	require.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestPin_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t, gmeAPI())

	res := do(t, http.MethodPost, srv.URL+"/api/stocks", map[string]string{"symbol": " "})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+"/api/stocks", strings.NewReader("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestUnknownID(t *testing.T) {
	srv, _ := newTestServer(t, gmeAPI())

	res := do(t, http.MethodGet, srv.URL+"/api/stocks/nope", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = do(t, http.MethodDelete, srv.URL+"/api/stocks/nope", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestChart(t *testing.T) {
	api := gmeAPI()
	srv, b := newTestServer(t, api)
	e, _ := b.Pin(provider.SearchResult{Symbol: "GME", Name: "GameStop Corp"})

	res := do(t, http.MethodGet, srv.URL+"/api/stocks/"+e.ID+"/chart.png", nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "image/png", res.Header.Get("Content-Type"))
	img, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	// the panel mount afterwards is served from cache
	res = do(t, http.MethodGet, srv.URL+"/api/stocks/"+e.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, api.Calls("Quote"), 1)
}

func TestChart_NoEarnings(t *testing.T) {
	api := gmeAPI()
	api.EarningsFunc = nil
	srv, b := newTestServer(t, api)
	e, _ := b.Pin(provider.SearchResult{Symbol: "GME", Name: "GameStop Corp"})

	res := do(t, http.MethodGet, srv.URL+"/api/stocks/"+e.ID+"/chart.png", nil)

	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestChart_NotPinned(t *testing.T) {
	srv, _ := newTestServer(t, gmeAPI())

	res := do(t, http.MethodGet, srv.URL+"/api/stocks/nope/chart.png", nil)

	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "stock is not pinned", decode[map[string]string](t, res)["error"])
}

func TestChart_UnpinnedWhileLoading(t *testing.T) {
	// Arrange: the stock is unpinned while its earnings are in flight
	api := gmeAPI()
	var b *board.Board
	var id string
	api.EarningsFunc = func(ctx context.Context, _ string) (provider.EarningsResponse, error) {
		b.Unpin(id)
		<-ctx.Done()
		return provider.EarningsResponse{}, ctx.Err()
	}
	srv, bb := newTestServer(t, api)
	b = bb
	e, _ := b.Pin(provider.SearchResult{Symbol: "GME", Name: "GameStop Corp"})
	id = e.ID

	// Act
	res := do(t, http.MethodGet, srv.URL+"/api/stocks/"+e.ID+"/chart.png", nil)

	// Assert: no chart is drawn for a stock that left the board
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.NotEqual(t, "image/png", res.Header.Get("Content-Type"))
	require.Zero(t, b.Cache().Len())
}
