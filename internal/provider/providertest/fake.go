// Package providertest provides an in-memory provider.API for tests.
package providertest

import (
	"context"
	"sync"

	"stonkboard/internal/provider"
)

// API is a provider.API whose answers come from the function fields.
// Nil functions answer with zero values. Calls are counted per method.
type API struct {
	SearchFunc   func(ctx context.Context, query string) (provider.SearchResponse, error)
	QuoteFunc    func(ctx context.Context, symbol string) (provider.Quote, error)
	EarningsFunc func(ctx context.Context, symbol string) (provider.EarningsResponse, error)

	mu    sync.Mutex
	calls map[string][]string
}

func (a *API) Name() string { return "fake" }

func (a *API) record(method, arg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calls == nil {
		a.calls = map[string][]string{}
	}
	a.calls[method] = append(a.calls[method], arg)
}

// Calls returns the arguments of every call to method ("Search", "Quote" or
// "Earnings"), in call order.
func (a *API) Calls(method string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls[method]...)
}

func (a *API) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	a.record("Search", query)
	if a.SearchFunc == nil {
		return provider.SearchResponse{BestMatches: []provider.SearchResult{}}, nil
	}
	return a.SearchFunc(ctx, query)
}

func (a *API) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	a.record("Quote", symbol)
	if a.QuoteFunc == nil {
		return provider.Quote{}, nil
	}
	return a.QuoteFunc(ctx, symbol)
}

func (a *API) Earnings(ctx context.Context, symbol string) (provider.EarningsResponse, error) {
	a.record("Earnings", symbol)
	if a.EarningsFunc == nil {
		return provider.EarningsResponse{Reports: []provider.EarningsReport{}}, nil
	}
	return a.EarningsFunc(ctx, symbol)
}
