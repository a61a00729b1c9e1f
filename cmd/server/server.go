package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"stonkboard/internal/board"
	"stonkboard/internal/cache"
	"stonkboard/internal/chart"
	"stonkboard/internal/compare"
	"stonkboard/internal/provider"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

type server struct {
	board *board.Board
	log   zerolog.Logger
}

func newServer(b *board.Board, log zerolog.Logger) *server {
	return &server{board: b, log: log.With().Str("component", "server").Logger()}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", s.handleListStocks)
			r.Post("/", s.handlePinStock)
			r.Get("/{id}", s.handleLoadStock)
			r.Delete("/{id}", s.handleUnpinStock)
			r.Get("/{id}/chart.png", s.handleChart)
		})
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.board.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type stocksResponse struct {
	Stocks []compare.Row `json:"stocks"`
}

func (s *server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stocksResponse{Stocks: compare.Rows(s.board.Views())})
}

type pinRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (s *server) handlePinStock(w http.ResponseWriter, r *http.Request) {
	var body pinRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Symbol = strings.TrimSpace(body.Symbol)
	if body.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol cannot be empty")
		return
	}
	e, ok := s.board.Pin(provider.SearchResult{Symbol: body.Symbol, Name: strings.TrimSpace(body.Name)})
	if !ok {
		s.writeError(w, http.StatusConflict, "stock is already pinned or the board is full")
		return
	}
	s.writeJSON(w, http.StatusCreated, e)
}

type stockResponse struct {
	compare.Row
	Chart []chart.Point `json:"chart"`
}

func (s *server) handleLoadStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stock, err := s.board.Load(r.Context(), id)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	v, ok := s.board.View(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "stock is not pinned")
		return
	}
	s.writeJSON(w, http.StatusOK, stockResponse{Row: compare.RowOf(v), Chart: chartPoints(stock)})
}

func (s *server) handleUnpinStock(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.board.Unpin(chi.URLParam(r, "id")); !ok {
		s.writeError(w, http.StatusNotFound, "stock is not pinned")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, ok := s.board.View(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "stock is not pinned")
		return
	}
	stock, err := s.board.Load(r.Context(), id)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	img, err := chart.RenderEPS(v.Entry.Symbol+" EPS", chartPoints(stock))
	if errors.Is(err, chart.ErrNoData) {
		s.writeError(w, http.StatusNotFound, "no earnings to chart")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("render chart")
		s.writeError(w, http.StatusInternalServerError, board.UnexpectedMessage)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func chartPoints(stock cache.Stock) []chart.Point {
	if stock.Earnings == nil {
		return []chart.Point{}
	}
	return chart.EarningsData(stock.Earnings.Reports)
}

func (s *server) writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNotPinned), errors.Is(err, board.ErrUnpinned):
		s.writeError(w, http.StatusNotFound, "stock is not pinned")
	default:
		s.writeFetchError(w, err)
	}
}

// writeFetchError maps provider failures to a status and the user-facing message.
func (s *server) writeFetchError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if provider.IsRateLimit(err) {
		status = http.StatusTooManyRequests
	}
	s.writeError(w, status, board.UserMessage(err))
}

func (s *server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
