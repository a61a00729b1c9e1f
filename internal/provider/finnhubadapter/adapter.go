package finnhubadapter

import (
	"context"
	"strings"
	"sync"
	"time"

	"stonkboard/internal/provider"
	"stonkboard/internal/provider/finnhub"
)

type Config struct {
	Name string // display name, default: Finnhub
	// Limit caps the number of matches returned. If <= 0, all are returned.
	Limit int
	// QueryCacheTTL keeps recent lookups to avoid repeating them while the
	// user refines a query. If <= 0, no internal caching is used.
	QueryCacheTTL time.Duration
}

// Lookup is the part of the Finnhub client the adapter uses.
type Lookup interface {
	Search(ctx context.Context, query string) (finnhub.SearchResponse, error)
}

// Adapter serves provider.Searcher from Finnhub symbol lookup.
type Adapter struct {
	cfg    Config
	client Lookup

	mu      sync.Mutex
	queries map[string]cachedQuery
}

type cachedQuery struct {
	res     provider.SearchResponse
	expires time.Time
}

func New(cfg Config, client Lookup) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Finnhub"
	}
	return &Adapter{cfg: cfg, client: client, queries: map[string]cachedQuery{}}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	key := strings.ToUpper(strings.TrimSpace(query))
	if res, ok := a.cached(key); ok {
		return res, nil
	}

	raw, err := a.client.Search(ctx, query)
	if err != nil {
		return provider.SearchResponse{}, err
	}

	out := provider.SearchResponse{BestMatches: make([]provider.SearchResult, 0, len(raw.Result))}
	for _, s := range raw.Result {
		if a.cfg.Limit > 0 && len(out.BestMatches) >= a.cfg.Limit {
			break
		}
		out.BestMatches = append(out.BestMatches, toSearchResult(s))
	}

	if a.cfg.QueryCacheTTL > 0 {
		a.mu.Lock()
		a.queries[key] = cachedQuery{res: out, expires: time.Now().Add(a.cfg.QueryCacheTTL)}
		a.mu.Unlock()
	}
	return out, nil
}

func (a *Adapter) cached(key string) (provider.SearchResponse, bool) {
	if a.cfg.QueryCacheTTL <= 0 {
		return provider.SearchResponse{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.queries[key]
	if !ok {
		return provider.SearchResponse{}, false
	}
	if time.Now().After(c.expires) {
		delete(a.queries, key)
		return provider.SearchResponse{}, false
	}
	res := provider.SearchResponse{BestMatches: append([]provider.SearchResult(nil), c.res.BestMatches...)}
	return res, true
}

// toSearchResult maps a Finnhub match. Finnhub has no market hours, region
// or match score, so those stay empty.
func toSearchResult(s finnhub.Symbol) provider.SearchResult {
	symbol := s.Symbol
	if symbol == "" {
		symbol = s.DisplaySymbol
	}
	return provider.SearchResult{
		Symbol: symbol,
		Name:   strings.TrimSpace(s.Description),
		Type:   s.Type,
	}
}
