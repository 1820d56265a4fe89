package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/catalog"
	"github.com/desertthunder/streamtunes/internal/shared"
)

// CatalogHandler proxies the upstream catalog API.
//
// List endpoints always answer 200 with an envelope; the degrade-to-empty
// policy lives in the catalog client. Entity endpoints surface upstream
// errors, and the stream endpoint maps a missing track to 404.
type CatalogHandler struct {
	svc    catalog.Service
	logger *log.Logger
}

// NewCatalogHandler creates a catalog proxy handler.
func NewCatalogHandler(svc catalog.Service, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger}
}

// Search handles GET /api/catalog/search.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	text := q.Get("query")
	if text == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	resultType := q.Get("type")
	if resultType == "" {
		resultType = "tracks"
	}

	limit := catalog.ParseLimit(q.Get("limit"), catalog.DefaultSearchLimit)
	offset := catalog.ParseOffset(q.Get("offset"))

	writeJSON(w, http.StatusOK, h.svc.Search(r.Context(), text, resultType, limit, offset))
}

// Trending handles GET /api/catalog/trending.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	timeRange := catalog.NormalizeTimeRange(q.Get("time"))
	limit := catalog.ParseLimit(q.Get("limit"), catalog.DefaultListLimit)

	writeJSON(w, http.StatusOK, h.svc.Trending(r.Context(), timeRange, limit))
}

// Popular handles GET /api/catalog/popular.
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := catalog.ParseLimit(r.URL.Query().Get("limit"), catalog.DefaultListLimit)
	writeJSON(w, http.StatusOK, h.svc.Popular(r.Context(), limit))
}

// Recent handles GET /api/catalog/recent.
func (h *CatalogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := catalog.ParseLimit(r.URL.Query().Get("limit"), catalog.DefaultListLimit)
	writeJSON(w, http.StatusOK, h.svc.RecentTracks(r.Context(), limit))
}

// TrendingArtists handles GET /api/catalog/trending-artists.
func (h *CatalogHandler) TrendingArtists(w http.ResponseWriter, r *http.Request) {
	limit := catalog.ParseLimit(r.URL.Query().Get("limit"), catalog.DefaultListLimit)
	writeJSON(w, http.StatusOK, h.svc.TrendingArtists(r.Context(), limit))
}

// TrendingPlaylists handles GET /api/catalog/trending-playlists.
func (h *CatalogHandler) TrendingPlaylists(w http.ResponseWriter, r *http.Request) {
	limit := catalog.ParseLimit(r.URL.Query().Get("limit"), catalog.DefaultListLimit)
	writeJSON(w, http.StatusOK, h.svc.TrendingPlaylists(r.Context(), limit))
}

// Track handles GET /api/catalog/tracks/{trackId}.
func (h *CatalogHandler) Track(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.svc.Track(r.Context(), r.PathValue("trackId"))
	if err != nil {
		h.logger.Error("track lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch track")
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

// Stream handles GET /api/catalog/tracks/{trackId}/stream.
func (h *CatalogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	trackID := r.PathValue("trackId")

	envelope, err := h.svc.StreamURL(r.Context(), trackID)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			h.logger.Error("track not found", "trackId", trackID)
			writeError(w, http.StatusNotFound, "Track not found")
			return
		}
		h.logger.Error("failed to fetch stream URL", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch stream URL")
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// User handles GET /api/catalog/users/{userId}.
func (h *CatalogHandler) User(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.svc.User(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.logger.Error("user lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

// UserTracks handles GET /api/catalog/users/{userId}/tracks.
func (h *CatalogHandler) UserTracks(w http.ResponseWriter, r *http.Request) {
	limit := catalog.ParseLimit(r.URL.Query().Get("limit"), catalog.DefaultListLimit)

	envelope, err := h.svc.UserTracks(r.Context(), r.PathValue("userId"), limit)
	if err != nil {
		h.logger.Error("user tracks lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch user tracks")
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

// Playlist handles GET /api/catalog/playlists/{playlistId}.
func (h *CatalogHandler) Playlist(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.svc.Playlist(r.Context(), r.PathValue("playlistId"))
	if err != nil {
		h.logger.Error("playlist lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch playlist")
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}
