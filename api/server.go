package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"tipster/database"
	"tipster/service"
)

// Server exposes operational HTTP endpoints next to the bot: a liveness
// probe and a small status report for dashboards.
type Server struct {
	httpServer *http.Server
	db         *database.DB
	seasons    service.SeasonService
	matches    service.MatchService
	startedAt  time.Time
}

type statusResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	ActiveSeason    string `json:"active_season,omitempty"`
	SeasonNumber    int    `json:"season_number,omitempty"`
	UpcomingMatches int    `json:"upcoming_matches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(addr string, db *database.DB, seasons service.SeasonService, matches service.MatchService) *Server {
	s := &Server{
		db:        db,
		seasons:   seasons,
		matches:   matches,
		startedAt: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("Starting status API")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unreachable"})
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	if season, err := s.seasons.GetActiveSeason(ctx); err == nil {
		resp.ActiveSeason = season.Name
		resp.SeasonNumber = season.SeasonNumber
	} else {
		log.WithError(err).Warn("Status endpoint could not load active season")
		resp.Status = "degraded"
	}

	if matches, err := s.matches.GetUpcomingMatches(ctx); err == nil {
		resp.UpcomingMatches = len(matches)
	} else {
		resp.Status = "degraded"
	}

	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("Failed to encode API response")
	}
}
