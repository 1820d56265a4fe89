package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/models"
	"github.com/desertthunder/streamtunes/internal/repositories"
	"github.com/desertthunder/streamtunes/internal/shared"
)

// LibraryHandler implements the personal library endpoints: playlists,
// liked songs, recently played history and artist follows.
// Every route requires authentication.
type LibraryHandler struct {
	playlists *repositories.PlaylistRepository
	library   *repositories.LibraryRepository
	logger    *log.Logger
}

// NewLibraryHandler creates a library handler.
func NewLibraryHandler(playlists *repositories.PlaylistRepository, library *repositories.LibraryRepository, logger *log.Logger) *LibraryHandler {
	return &LibraryHandler{playlists: playlists, library: library, logger: logger}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type trackRequest struct {
	Track models.Track `json:"track"`
}

// CreatePlaylist handles POST /api/playlists.
func (h *LibraryHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist := models.NewPlaylist(0, UserID(r), req.Name, req.Description)
	if err := h.playlists.Create(playlist); err != nil {
		h.logger.Error("failed to create playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error creating playlist")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]models.PlaylistView{"playlist": playlist.View(nil)})
}

// ListPlaylists handles GET /api/playlists.
func (h *LibraryHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(map[string]any{"user_id": UserID(r)})
	if err != nil {
		h.logger.Error("failed to list playlists", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching playlists")
		return
	}

	views := []models.PlaylistView{}
	for _, playlist := range playlists {
		tracks, err := h.library.PlaylistTracks(playlist.ID())
		if err != nil {
			h.logger.Error("failed to load playlist tracks", "playlist", playlist.ID(), "err", err)
			writeError(w, http.StatusInternalServerError, "Error fetching playlists")
			return
		}
		views = append(views, playlist.View(tracks))
	}

	writeJSON(w, http.StatusOK, map[string][]models.PlaylistView{"playlists": views})
}

// GetPlaylist handles GET /api/playlists/{playlistId}.
func (h *LibraryHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	tracks, err := h.library.PlaylistTracks(playlist.ID())
	if err != nil {
		h.logger.Error("failed to load playlist tracks", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.PlaylistView{"playlist": playlist.View(tracks)})
}

// UpdatePlaylist handles PUT /api/playlists/{playlistId}.
func (h *LibraryHandler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist.SetName(req.Name)
	playlist.SetDescription(req.Description)

	if err := h.playlists.Update(playlist); err != nil {
		h.logger.Error("failed to update playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error updating playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.PlaylistView{"playlist": playlist.View(nil)})
}

// DeletePlaylist handles DELETE /api/playlists/{playlistId}.
func (h *LibraryHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.playlists.Delete(playlist.ID()); err != nil {
		h.logger.Error("failed to delete playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error deleting playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Playlist deleted successfully"})
}

// AddPlaylistTrack handles POST /api/playlists/{playlistId}/tracks.
func (h *LibraryHandler) AddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req trackRequest
	if err := decodeJSON(r, &req); err != nil || req.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "Track data is required")
		return
	}

	if err := h.library.AddPlaylistTrack(playlist.ID(), req.Track); err != nil {
		h.logger.Error("failed to add track to playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error adding track to playlist")
		return
	}

	if err := h.playlists.Touch(playlist.ID()); err != nil {
		h.logger.Warn("failed to touch playlist", "err", err)
	}

	tracks, err := h.library.PlaylistTracks(playlist.ID())
	if err != nil {
		h.logger.Error("failed to load playlist tracks", "err", err)
		writeError(w, http.StatusInternalServerError, "Error adding track to playlist")
		return
	}

	writeJSON(w, http.StatusOK, playlist.View(tracks))
}

// RemovePlaylistTrack handles DELETE /api/playlists/{playlistId}/tracks/{trackId}.
func (h *LibraryHandler) RemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.library.RemovePlaylistTrack(playlist.ID(), r.PathValue("trackId")); err != nil {
		h.logger.Error("failed to remove track from playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error removing track from playlist")
		return
	}

	if err := h.playlists.Touch(playlist.ID()); err != nil {
		h.logger.Warn("failed to touch playlist", "err", err)
	}

	tracks, err := h.library.PlaylistTracks(playlist.ID())
	if err != nil {
		h.logger.Error("failed to load playlist tracks", "err", err)
		writeError(w, http.StatusInternalServerError, "Error removing track from playlist")
		return
	}

	writeJSON(w, http.StatusOK, playlist.View(tracks))
}

// LikedSongs handles GET /api/liked-songs.
func (h *LibraryHandler) LikedSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.library.LikedSongs(UserID(r))
	if err != nil {
		h.logger.Error("failed to list liked songs", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching liked songs")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.TrackEntry{"likedSongs": songs})
}

// LikeTrack handles POST /api/liked-songs.
func (h *LibraryHandler) LikeTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil || req.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "Track data is required")
		return
	}

	if err := h.library.LikeTrack(UserID(r), req.Track); err != nil {
		if errors.Is(err, shared.ErrAlreadyLiked) {
			writeError(w, http.StatusBadRequest, "Track already liked")
			return
		}
		h.logger.Error("failed to like track", "err", err)
		writeError(w, http.StatusInternalServerError, "Error liking track")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Track added to liked songs"})
}

// UnlikeTrack handles DELETE /api/liked-songs/{trackId}.
func (h *LibraryHandler) UnlikeTrack(w http.ResponseWriter, r *http.Request) {
	if err := h.library.UnlikeTrack(UserID(r), r.PathValue("trackId")); err != nil {
		h.logger.Error("failed to unlike track", "err", err)
		writeError(w, http.StatusInternalServerError, "Error removing liked song")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Track removed from liked songs"})
}

// RecentlyPlayed handles GET /api/recently-played.
func (h *LibraryHandler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.library.RecentlyPlayed(UserID(r))
	if err != nil {
		h.logger.Error("failed to list recently played", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching recently played tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.PlayEntry{"recentlyPlayed": entries})
}

// PushRecentlyPlayed handles POST /api/recently-played.
func (h *LibraryHandler) PushRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil || req.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "Track data is required")
		return
	}

	if err := h.library.PushRecentlyPlayed(UserID(r), req.Track); err != nil {
		h.logger.Error("failed to record play", "err", err)
		writeError(w, http.StatusInternalServerError, "Error adding recently played track")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Play recorded"})
}

// ClearRecentlyPlayed handles DELETE /api/recently-played.
func (h *LibraryHandler) ClearRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	if err := h.library.ClearRecentlyPlayed(UserID(r)); err != nil {
		h.logger.Error("failed to clear recently played", "err", err)
		writeError(w, http.StatusInternalServerError, "Error clearing recently played tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Recently played tracks cleared successfully"})
}

type followRequest struct {
	Platform   string `json:"platform"`
	ArtistData struct {
		Name           string         `json:"name"`
		Handle         string         `json:"handle"`
		ProfilePicture models.Artwork `json:"profile_picture"`
		FollowerCount  int            `json:"follower_count"`
	} `json:"artistData"`
}

// Follow handles POST /api/follow/{artistId}.
func (h *LibraryHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Platform == "" {
		req.Platform = "audius"
	}

	artist := models.FollowedArtist{
		Platform:       req.Platform,
		ID:             r.PathValue("artistId"),
		Name:           req.ArtistData.Name,
		Handle:         req.ArtistData.Handle,
		ProfilePicture: req.ArtistData.ProfilePicture,
	}

	if err := h.library.FollowArtist(UserID(r), artist); err != nil {
		if errors.Is(err, shared.ErrAlreadyFollowing) {
			writeError(w, http.StatusBadRequest, "Already following this artist")
			return
		}
		h.logger.Error("failed to follow artist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error following artist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Successfully followed artist",
		"followersCount": req.ArtistData.FollowerCount,
	})
}

// Unfollow handles DELETE /api/follow/{artistId}.
func (h *LibraryHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = "audius"
	}

	if err := h.library.UnfollowArtist(UserID(r), platform, r.PathValue("artistId")); err != nil {
		h.logger.Error("failed to unfollow artist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error unfollowing artist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully unfollowed artist"})
}

// Following handles GET /api/follow.
func (h *LibraryHandler) Following(w http.ResponseWriter, r *http.Request) {
	artists, err := h.library.Following(UserID(r))
	if err != nil {
		h.logger.Error("failed to list follows", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching followed artists")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.FollowedArtist{"following": artists})
}

// ownedPlaylist loads the playlist from the path and verifies ownership,
// writing the error response itself when the lookup fails.
func (h *LibraryHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (*models.Playlist, bool) {
	playlist, err := h.playlists.Get(r.PathValue("playlistId"))
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "Playlist not found")
			return nil, false
		}
		h.logger.Error("failed to load playlist", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching playlist")
		return nil, false
	}

	// Ownership is checked here rather than in SQL so a foreign playlist is
	// indistinguishable from a missing one.
	if playlist.UserID() != UserID(r) {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}

	return playlist, true
}
