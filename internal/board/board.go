// Package board holds a dashboard session: the searcher, the quote provider,
// the per-symbol cache and the pinned list, plus the fetch state of every
// pinned entry.
//
// Each pinned entry moves through unfetched → fetching → {fetched | errored}
// at most once. Fetched and errored are terminal; a failed entry is retried
// only by unpinning and pinning the stock again.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"stonkboard/internal/cache"
	"stonkboard/internal/pinned"
	"stonkboard/internal/provider"
)

var (
	// ErrNotPinned is returned for an entry ID that is not on the board.
	ErrNotPinned = errors.New("board: stock is not pinned")
	// ErrUnpinned is returned by a Load whose entry was unpinned mid-fetch.
	// Nothing is written to the cache in that case.
	ErrUnpinned = errors.New("board: stock was unpinned before its data arrived")
)

type State int

const (
	Unfetched State = iota
	Fetching
	Fetched
	Errored
)

func (s State) String() string {
	switch s {
	case Unfetched:
		return "unfetched"
	case Fetching:
		return "fetching"
	case Fetched:
		return "fetched"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// slot tracks one pinned entry. ctx is canceled on unpin.
type slot struct {
	state  State
	err    error
	ctx    context.Context
	cancel context.CancelFunc
}

type Board struct {
	api      provider.API
	searcher provider.Searcher
	cache    *cache.Cache
	pins     *pinned.List
	log      zerolog.Logger

	sf singleflight.Group

	mu    sync.Mutex
	slots map[string]*slot
}

type Option func(*Board)

// WithSearcher serves Search from s instead of the quote provider.
func WithSearcher(s provider.Searcher) Option {
	return func(b *Board) { b.searcher = s }
}

// WithCache shares c with other boards. The default is a fresh cache.
func WithCache(c *cache.Cache) Option {
	return func(b *Board) { b.cache = c }
}

// WithPinned starts the board from an existing list.
func WithPinned(l *pinned.List) Option {
	return func(b *Board) { b.pins = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Board) { b.log = l }
}

func New(api provider.API, opts ...Option) *Board {
	b := &Board{
		api:   api,
		log:   zerolog.Nop(),
		slots: make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.searcher == nil {
		b.searcher = api
	}
	if b.cache == nil {
		b.cache = cache.New()
	}
	if b.pins == nil {
		b.pins = pinned.New(pinned.MaxPinned)
	}
	b.log = b.log.With().Str("component", "board").Logger()
	return b
}

func (b *Board) Cache() *cache.Cache { return b.cache }

func (b *Board) Pinned() *pinned.List { return b.pins }

// Search returns the matches for query. A blank query matches nothing and
// makes no request.
func (b *Board) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return provider.SearchResponse{BestMatches: []provider.SearchResult{}}, nil
	}
	res, err := b.searcher.Search(ctx, query)
	if err != nil {
		b.logFailure(err, "search failed", "query", query)
		return provider.SearchResponse{}, fmt.Errorf("search %q: %w", query, err)
	}
	if res.BestMatches == nil {
		res.BestMatches = []provider.SearchResult{}
	}
	return res, nil
}

// CanPin reports whether r can be pinned right now.
func (b *Board) CanPin(r provider.SearchResult) bool {
	return b.pins.CanPin(stockOf(r))
}

// Pin adds r to the board. ok is false when the board is full or r's
// symbol-key is already pinned.
func (b *Board) Pin(r provider.SearchResult) (pinned.Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.pins.Pin(stockOf(r))
	if !ok {
		return pinned.Entry{}, false
	}
	b.slots[e.ID] = newSlot()
	b.log.Debug().Str("id", e.ID).Str("key", e.Key).Msg("pinned")
	return e, true
}

// Unpin removes the entry and cancels its fetch if one is in flight. Cached
// data for the entry's symbol-key is kept.
func (b *Board) Unpin(id string) (pinned.Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.pins.Unpin(id)
	if !ok {
		return pinned.Entry{}, false
	}
	if s, ok := b.slots[id]; ok {
		s.cancel()
		delete(b.slots, id)
	}
	b.log.Debug().Str("id", e.ID).Str("key", e.Key).Msg("unpinned")
	return e, true
}

// Close cancels every in-flight fetch.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.slots {
		s.cancel()
	}
}

// Load returns the quote and earnings of a pinned entry, fetching them on
// the first call for its symbol-key. A cached key is served without any
// request. An entry whose fetch failed keeps returning that failure.
//
// Concurrent Loads of one entry share a single fetch. ctx bounds only the
// wait: the fetch itself runs until it finishes or the entry is unpinned.
func (b *Board) Load(ctx context.Context, id string) (cache.Stock, error) {
	b.mu.Lock()
	e, ok := b.pins.Get(id)
	if !ok {
		b.mu.Unlock()
		return cache.Stock{}, ErrNotPinned
	}
	s := b.slotLocked(id)
	if stock, ok := b.cache.Get(e.Key); ok {
		s.state, s.err = Fetched, nil
		b.mu.Unlock()
		return stock, nil
	}
	if s.state == Errored {
		err := s.err
		b.mu.Unlock()
		return cache.Stock{}, err
	}
	fetchCtx := s.ctx
	b.mu.Unlock()

	ch := b.sf.DoChan(id, func() (any, error) {
		return b.fetch(fetchCtx, e)
	})
	select {
	case <-ctx.Done():
		return cache.Stock{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return cache.Stock{}, res.Err
		}
		return res.Val.(cache.Stock), nil
	}
}

// fetch requests the quote and earnings of e together and stores both, or
// neither.
func (b *Board) fetch(ctx context.Context, e pinned.Entry) (cache.Stock, error) {
	b.mu.Lock()
	s, ok := b.slots[e.ID]
	if !ok {
		b.mu.Unlock()
		return cache.Stock{}, ErrUnpinned
	}
	if stock, ok := b.cache.Get(e.Key); ok {
		s.state, s.err = Fetched, nil
		b.mu.Unlock()
		return stock, nil
	}
	s.state = Fetching
	b.mu.Unlock()

	log := b.log.With().Str("id", e.ID).Str("symbol", e.Symbol).Logger()
	log.Debug().Msg("fetching quote and earnings")

	var (
		quote    provider.Quote
		earnings provider.EarningsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := b.api.Quote(gctx, e.Symbol)
		if err != nil {
			return fmt.Errorf("quote %s: %w", e.Symbol, err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		r, err := b.api.Earnings(gctx, e.Symbol)
		if err != nil {
			return fmt.Errorf("earnings %s: %w", e.Symbol, err)
		}
		if r.Reports == nil {
			r.Reports = []provider.EarningsReport{}
		}
		earnings = r
		return nil
	})
	err := g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.slots[e.ID]; !ok || cur != s || ctx.Err() != nil {
		log.Debug().Msg("unpinned during fetch, dropping result")
		return cache.Stock{}, ErrUnpinned
	}
	if err != nil {
		s.state, s.err = Errored, err
		b.logFailure(err, "fetch failed", "symbol", e.Symbol)
		return cache.Stock{}, err
	}

	stock := cache.Stock{Quote: &quote, Earnings: &earnings}
	b.cache.Put(e.Key, stock)
	s.state, s.err = Fetched, nil
	log.Debug().Int("reports", len(earnings.Reports)).Msg("fetched")
	return stock, nil
}

// View is a snapshot of one pinned entry.
type View struct {
	Entry pinned.Entry
	State State
	// Stock is set when State is Fetched.
	Stock cache.Stock
	// Err is set when State is Errored.
	Err error
}

// Views returns a snapshot of every pinned entry in pin order. It never fetches.
func (b *Board) Views() []View {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.pins.Entries()
	out := make([]View, 0, len(entries))
	for _, e := range entries {
		out = append(out, b.viewLocked(e))
	}
	return out
}

// View returns the snapshot of one entry.
func (b *Board) View(id string) (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.pins.Get(id)
	if !ok {
		return View{}, false
	}
	return b.viewLocked(e), true
}

func (b *Board) viewLocked(e pinned.Entry) View {
	v := View{Entry: e, State: Unfetched}
	if stock, ok := b.cache.Get(e.Key); ok {
		v.State, v.Stock = Fetched, stock
		return v
	}
	if s, ok := b.slots[e.ID]; ok {
		v.State, v.Err = s.state, s.err
	}
	return v
}

func (b *Board) slotLocked(id string) *slot {
	s, ok := b.slots[id]
	if !ok {
		s = newSlot()
		b.slots[id] = s
	}
	return s
}

func newSlot() *slot {
	ctx, cancel := context.WithCancel(context.Background())
	return &slot{state: Unfetched, ctx: ctx, cancel: cancel}
}

// logFailure logs rate limiting as routine and everything else as an error.
func (b *Board) logFailure(err error, msg string, key, val string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b.log.Debug().Err(err).Str(key, val).Msg(msg)
	case provider.IsRateLimit(err):
		b.log.Info().Err(err).Str(key, val).Msg(msg + ": rate limited")
	default:
		b.log.Error().Err(err).Str(key, val).Msg(msg)
	}
}

func stockOf(r provider.SearchResult) pinned.Stock {
	return pinned.Stock{Symbol: r.Symbol, Name: r.Name}
}
