package provider

import (
	"context"
	"time"
)

// SearchResult is one symbol match returned by a search.
type SearchResult struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Region      string `json:"region"`
	MarketOpen  string `json:"marketOpen"`
	MarketClose string `json:"marketClose"`
	Timezone    string `json:"timezone"`
	Currency    string `json:"currency"`
	MatchScore  string `json:"matchScore"`
}

type SearchResponse struct {
	BestMatches []SearchResult `json:"bestMatches"`
}

// Quote is the normalized price quote for one symbol.
// Values are kept as the provider's decimal strings to avoid float rounding.
type Quote struct {
	Open          string    `json:"open"`
	High          string    `json:"high"`
	Low           string    `json:"low"`
	Price         string    `json:"price"`
	ChangePercent string    `json:"changePercent"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

type EarningsReport struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedEPS      string `json:"reportedEPS"`
}

// EarningsResponse holds quarterly reports, newest first.
// An empty Reports slice means the symbol has no earnings history.
type EarningsResponse struct {
	Reports   []EarningsReport `json:"reports"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

type Searcher interface {
	Search(ctx context.Context, query string) (SearchResponse, error)
}

type Quoter interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

type EarningsFetcher interface {
	Earnings(ctx context.Context, symbol string) (EarningsResponse, error)
}

// API is the full set of remote queries a quote provider serves.
type API interface {
	Name() string
	Searcher
	Quoter
	EarningsFetcher
}
