package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playlist-crawler/internal/crawler"
	"playlist-crawler/pkg/models"
)

// maxBodyBytes caps the request body; the payload is a single URL.
const maxBodyBytes = 1 << 16

// Client-facing error texts.
const (
	msgInvalidBody  = "Invalid request body"
	msgURLRequired  = "Playlist URL is required"
	msgInvalidURL   = "Invalid playlist URL"
	msgScrapeFailed = "An error occurred while scraping the playlist"
)

// Scraper is the crawl capability the handler needs.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (models.PlaylistResult, error)
}

type scrapeRequest struct {
	PlaylistURL string `json:"playlistUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the scrape endpoint plus health and metrics.
type Handler struct {
	scraper  Scraper
	registry *prometheus.Registry
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewHandler builds the routes. registry may be nil, which disables /metrics.
func NewHandler(scraper Scraper, registry *prometheus.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{scraper: scraper, registry: registry, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /scrape-playlist", h.scrapePlaylist)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	if registry != nil {
		h.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) scrapePlaylist(w http.ResponseWriter, r *http.Request) {
	var body scrapeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	result, err := h.scraper.Scrape(r.Context(), body.PlaylistURL)
	if err != nil {
		if crawler.IsInvalidInput(err) {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: inputMessage(err)})
			return
		}
		h.logger.Error("scrape failed",
			slog.String("url", body.PlaylistURL),
			slog.String("error_type", crawler.ErrorKind(err)),
			slog.Any("error", err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgScrapeFailed})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// inputMessage keeps parse details out of client responses.
func inputMessage(err error) string {
	if errors.Is(err, models.ErrURLRequired) {
		return msgURLRequired
	}
	return msgInvalidURL
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", slog.Any("error", err))
	}
}
