package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cookoff-scoreboard/internal/app"
	"cookoff-scoreboard/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the scoreboard to the presentation layer.
type Server struct {
	board    *app.Scoreboard
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	ws       *WSHandler
	router   *chi.Mux
}

// NewServer wires the REST routes, the websocket endpoint and /metrics.
// A nil gatherer serves the default Prometheus registry.
func NewServer(board *app.Scoreboard, logger *slog.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		board:    board,
		logger:   logger,
		gatherer: gatherer,
		ws:       NewWSHandler(board, logger),
	}
	s.setupRouter()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.ws.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		r.Get("/catalog", s.handleCatalog)
		r.Get("/progress", s.handleProgress)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/matrix", s.handleMatrix)

		r.Route("/scores", func(r chi.Router) {
			r.Get("/", s.handleListScores)
			r.Delete("/", s.handleReset)
			r.Get("/{participantID}/{challengeID}", s.handleGetScore)
			r.Put("/{participantID}/{challengeID}/rating", s.handleRate)
			r.Put("/{participantID}/{challengeID}/notes", s.handleNotes)
		})
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type catalogResponse struct {
	Participants []domain.Participant `json:"participants"`
	Groups       []domain.Group       `json:"groups"`
	Challenges   []domain.Challenge   `json:"challenges"`
}

type leaderboardResponse struct {
	Standings []domain.Standing `json:"standings"`
	Podium    []domain.Standing `json:"podium"`
	Others    []domain.Standing `json:"others"`
}

type ratingRequest struct {
	Rating *int `json:"rating"`
	// Toggle applies the star-control rule: repeating the current rating clears it.
	Toggle bool `json:"toggle"`
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.board.Catalog()
	respondJSON(w, http.StatusOK, catalogResponse{
		Participants: cat.Participants(),
		Groups:       cat.Groups(),
		Challenges:   cat.Challenges(),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board.Progress())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newLeaderboardResponse(s.board.Leaderboard()))
}

func newLeaderboardResponse(lb domain.Leaderboard) leaderboardResponse {
	return leaderboardResponse{
		Standings: lb.Standings,
		Podium:    lb.Podium(),
		Others:    lb.Others(),
	}
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board.ScoreMatrix())
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	entries := s.board.Entries()
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantID")
	challengeID := chi.URLParam(r, "challengeID")

	if err := s.board.Catalog().CheckKey(participantID, challengeID); err != nil {
		s.respondDomainError(w, err)
		return
	}
	entry, ok := s.board.Entry(participantID, challengeID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_judged", "no score recorded for this pair")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Rating == nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "expected {\"rating\": 0-10}")
		return
	}

	participantID := chi.URLParam(r, "participantID")
	challengeID := chi.URLParam(r, "challengeID")

	rate := s.board.Rate
	if req.Toggle {
		rate = s.board.ToggleRating
	}
	entry, err := rate(r.Context(), participantID, challengeID, *req.Rating)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "expected {\"notes\": \"...\"}")
		return
	}

	entry, err := s.board.SetNotes(r.Context(), chi.URLParam(r, "participantID"), chi.URLParam(r, "challengeID"), *req.Notes)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.board.ResetScores(r.Context()); err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.logger.Info("scores reset", "request_id", middleware.GetReqID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownParticipant), errors.Is(err, domain.ErrUnknownChallenge):
		respondError(w, http.StatusNotFound, "unknown_key", err.Error())
	case errors.Is(err, domain.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Error: &apiError{Code: code, Message: message}}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
