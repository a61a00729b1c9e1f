// Package app wires configured providers into a board.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stonkboard/internal/board"
	"stonkboard/internal/config"
	"stonkboard/internal/httpx"
	"stonkboard/internal/provider"
	"stonkboard/internal/provider/alphavantage"
	"stonkboard/internal/provider/finnhub"
	"stonkboard/internal/provider/finnhubadapter"
	"stonkboard/internal/provider/ratelimit"
)

const userAgent = "stonkboard/1.0"

// Providers builds the rate-limited quote provider and the searcher from cfg.
// The searcher is the quote provider itself unless Finnhub is enabled.
func Providers(cfg config.Config, log zerolog.Logger) (provider.API, provider.Searcher, error) {
	av := cfg.AlphaVantage
	if av.APIKey == "" {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set; requests will be rejected by the provider")
	}

	httpClient := httpx.New(time.Duration(av.RequestTimeoutSec) * time.Second)
	httpClient.UserAgent = userAgent

	client, err := alphavantage.NewClient(av.APIKey,
		alphavantage.WithBaseURL(av.BaseURL),
		alphavantage.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("alphavantage client: %w", err)
	}
	api := ratelimit.Wrap(client, av.MaxRequestsPerMinute, av.Burst, time.Duration(av.MinRequestIntervalSec)*time.Second)
	log.Info().
		Str("provider", api.Name()).
		Int("max_rpm", av.MaxRequestsPerMinute).
		Int("burst", av.Burst).
		Int("min_interval_sec", av.MinRequestIntervalSec).
		Msg("quote provider ready")

	var searcher provider.Searcher = api
	if cfg.Finnhub.Enabled {
		if cfg.Finnhub.APIKey == "" {
			log.Warn().Msg("finnhub.enabled=true but FINNHUB_API_KEY not set; searching with the quote provider")
			return api, searcher, nil
		}
		fh, err := finnhub.NewClient(cfg.Finnhub.APIKey,
			finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
			finnhub.WithHTTPClient(httpClient),
			finnhub.WithHeader(http.Header{"Accept": []string{"application/json"}}),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("finnhub client: %w", err)
		}
		searcher = finnhubadapter.New(finnhubadapter.Config{QueryCacheTTL: time.Minute}, fh)
		log.Info().Str("searcher", fh.Name()).Msg("symbol search ready")
	}
	return api, searcher, nil
}

// NewBoard builds a board over the configured providers.
func NewBoard(cfg config.Config, log zerolog.Logger, opts ...board.Option) (*board.Board, error) {
	api, searcher, err := Providers(cfg, log)
	if err != nil {
		return nil, err
	}
	opts = append([]board.Option{board.WithSearcher(searcher), board.WithLogger(log)}, opts...)
	return board.New(api, opts...), nil
}
