package app

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"stonkboard/internal/config"
	"stonkboard/internal/provider/finnhubadapter"
)

func TestProviders_AlphaVantageSearchByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "SYMBOL_SEARCH", r.URL.Query().Get("function"))
		require.Equal(t, "key", r.URL.Query().Get("apikey"))
		require.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"bestMatches":[{"1. symbol":"GME","2. name":"GameStop Corp"}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.AlphaVantage.APIKey = "key"
	cfg.AlphaVantage.BaseURL = srv.URL
	cfg.AlphaVantage.MaxRequestsPerMinute = 0

	api, searcher, err := Providers(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "AlphaVantage", api.Name())

	res, err := searcher.Search(t.Context(), "GME")
	require.NoError(t, err)
	require.Equal(t, "GME", res.BestMatches[0].Symbol)
	require.EqualValues(t, 1, hits.Load())
}

func TestProviders_FinnhubSearcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "fh", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"count":1,"result":[{"description":"GAMESTOP CORP","displaySymbol":"GME","symbol":"GME","type":"Common Stock"}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Finnhub = config.Finnhub{Enabled: true, APIKey: "fh", BaseURL: srv.URL}

	_, searcher, err := Providers(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &finnhubadapter.Adapter{}, searcher)

	res, err := searcher.Search(t.Context(), "GME")
	require.NoError(t, err)
	require.Equal(t, "GAMESTOP CORP", res.BestMatches[0].Name)
}

func TestProviders_FinnhubWithoutKeyFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.Finnhub.Enabled = true

	api, searcher, err := Providers(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, api, searcher)
}

func TestNewBoard(t *testing.T) {
	b, err := NewBoard(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	require.Empty(t, b.Views())
}
