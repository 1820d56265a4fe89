package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/streamtunes/internal/catalog"
	"github.com/desertthunder/streamtunes/internal/models"
	"github.com/desertthunder/streamtunes/internal/repositories"
	"github.com/desertthunder/streamtunes/internal/shared"
	mocks "github.com/desertthunder/streamtunes/internal/testing"
)

// newTestApp wires the full route table against an in-memory database and
// the given catalog double.
func newTestApp(t *testing.T, svc catalog.Service) http.Handler {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := &shared.Config{}
	config.Auth.JWTSecret = "test-secret"
	config.Auth.TokenTTLHours = 1

	if svc == nil {
		svc = &mocks.MockCatalog{}
	}

	app := NewApp(config, Deps{
		Catalog:   svc,
		Users:     repositories.NewUserRepository(db),
		Playlists: repositories.NewPlaylistRepository(db),
		Library:   repositories.NewLibraryRepository(db),
	}, shared.NewLogger(io.Discard))

	return app.Handler()
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// signup registers an account and returns its session token.
func signup(t *testing.T, handler http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}

	return session.Token
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestApp(t, nil)

	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("Signup", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"email":    "Listener@Example.Com",
			"password": "password123",
			"name":     "Listener",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var session struct {
			Token string          `json:"token"`
			User  models.UserView `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
			t.Fatalf("failed to decode session: %v", err)
		}
		if session.User.Email != "listener@example.com" {
			t.Errorf("expected lowercased email, got %s", session.User.Email)
		}
		if session.User.Name != "Listener" {
			t.Errorf("expected name Listener, got %s", session.User.Name)
		}
	})

	t.Run("Signup Duplicate Email", func(t *testing.T) {
		handler := newTestApp(t, nil)
		signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"email":    "listener@example.com",
			"password": "password123",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for duplicate email, got %d", rec.Code)
		}
	})

	t.Run("Signup Short Password", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"email":    "listener@example.com",
			"password": "short",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for short password, got %d", rec.Code)
		}
	})

	t.Run("Login", func(t *testing.T) {
		handler := newTestApp(t, nil)
		signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "listener@example.com",
			"password": "password123",
		})
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Login Wrong Password", func(t *testing.T) {
		handler := newTestApp(t, nil)
		signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "listener@example.com",
			"password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Login Unknown Email", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Me", func(t *testing.T) {
		handler := newTestApp(t, nil)
		token := signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodGet, "/api/auth/me", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var payload struct {
			User models.UserView `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.User.Email != "listener@example.com" {
			t.Errorf("unexpected user: %+v", payload.User)
		}
	})

	t.Run("Me Without Token", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodGet, "/api/auth/me", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("Search Requires Query", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodGet, "/api/catalog/search", "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 without query, got %d", rec.Code)
		}
	})

	t.Run("Search Parses And Clamps Parameters", func(t *testing.T) {
		var gotText string
		var gotLimit, gotOffset int

		svc := &mocks.MockCatalog{
			SearchFn: func(ctx context.Context, text, resultType string, limit, offset int) catalog.TrackList {
				gotText, gotLimit, gotOffset = text, limit, offset
				return catalog.EmptyTrackList()
			},
		}
		handler := newTestApp(t, svc)

		rec := doJSON(t, handler, http.MethodGet, "/api/catalog/search?query=rock&limit=500&offset=-2", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotText != "rock" {
			t.Errorf("expected query rock, got %s", gotText)
		}
		if gotLimit != catalog.MaxLimit {
			t.Errorf("expected limit clamped to %d, got %d", catalog.MaxLimit, gotLimit)
		}
		if gotOffset != 0 {
			t.Errorf("expected offset clamped to 0, got %d", gotOffset)
		}
	})

	t.Run("Search Unparseable Limit Uses Default", func(t *testing.T) {
		var gotLimit int
		svc := &mocks.MockCatalog{
			SearchFn: func(ctx context.Context, text, resultType string, limit, offset int) catalog.TrackList {
				gotLimit = limit
				return catalog.EmptyTrackList()
			},
		}
		handler := newTestApp(t, svc)

		doJSON(t, handler, http.MethodGet, "/api/catalog/search?query=rock&limit=abc", "", nil)
		if gotLimit != catalog.DefaultSearchLimit {
			t.Errorf("expected default limit %d, got %d", catalog.DefaultSearchLimit, gotLimit)
		}
	})

	t.Run("Trending Normalizes Time Range", func(t *testing.T) {
		var gotRange catalog.TimeRange
		svc := &mocks.MockCatalog{
			TrendingFn: func(ctx context.Context, timeRange catalog.TimeRange, limit int) catalog.TrackList {
				gotRange = timeRange
				return catalog.EmptyTrackList()
			},
		}
		handler := newTestApp(t, svc)

		doJSON(t, handler, http.MethodGet, "/api/catalog/trending?time=bogus", "", nil)
		if gotRange != catalog.TimeRangeWeek {
			t.Errorf("expected week, got %s", gotRange)
		}
	})

	t.Run("List Endpoints Always Answer 200", func(t *testing.T) {
		handler := newTestApp(t, nil)

		paths := []string{
			"/api/catalog/trending",
			"/api/catalog/popular",
			"/api/catalog/recent",
			"/api/catalog/trending-artists",
			"/api/catalog/trending-playlists",
		}
		for _, path := range paths {
			rec := doJSON(t, handler, http.MethodGet, path, "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", path, rec.Code)
			}
		}
	})

	t.Run("Stream Not Found", func(t *testing.T) {
		svc := &mocks.MockCatalog{
			StreamURLFn: func(ctx context.Context, id string) (catalog.Envelope, error) {
				return catalog.Envelope{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
			},
		}
		handler := newTestApp(t, svc)

		rec := doJSON(t, handler, http.MethodGet, "/api/catalog/tracks/missing/stream", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}

		var payload map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload["message"] != "Track not found" {
			t.Errorf("unexpected message: %s", payload["message"])
		}
	})

	t.Run("Stream Success", func(t *testing.T) {
		svc := &mocks.MockCatalog{
			StreamURLFn: func(ctx context.Context, id string) (catalog.Envelope, error) {
				return catalog.StringEnvelope("https://node.example.com/v1/tracks/" + id + "/stream"), nil
			},
		}
		handler := newTestApp(t, svc)

		rec := doJSON(t, handler, http.MethodGet, "/api/catalog/tracks/abc/stream", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var envelope struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		if envelope.Data != "https://node.example.com/v1/tracks/abc/stream" {
			t.Errorf("unexpected stream URL: %s", envelope.Data)
		}
	})

	t.Run("Track Upstream Failure", func(t *testing.T) {
		svc := &mocks.MockCatalog{
			TrackFn: func(ctx context.Context, id string) (catalog.Envelope, error) {
				return catalog.Envelope{}, &catalog.StatusError{Endpoint: "/v1/tracks/" + id, Code: 502}
			},
		}
		handler := newTestApp(t, svc)

		rec := doJSON(t, handler, http.MethodGet, "/api/catalog/tracks/abc", "", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestPlaylistEndpoints(t *testing.T) {
	sampleTrack := models.Track{ID: "track-1", Title: "Sample", User: models.TrackArtist{Name: "Artist"}}

	t.Run("Create And Get", func(t *testing.T) {
		handler := newTestApp(t, nil)
		token := signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/playlists", token, map[string]string{
			"name":        "Morning Mix",
			"description": "wake up tunes",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created struct {
			Playlist models.PlaylistView `json:"playlist"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if created.Playlist.Name != "Morning Mix" {
			t.Errorf("unexpected playlist: %+v", created.Playlist)
		}

		rec = doJSON(t, handler, http.MethodGet, "/api/playlists/"+created.Playlist.ID, token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Create Requires Name", func(t *testing.T) {
		handler := newTestApp(t, nil)
		token := signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/playlists", token, map[string]string{"description": "no name"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		handler := newTestApp(t, nil)

		rec := doJSON(t, handler, http.MethodGet, "/api/playlists", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Foreign Playlist Looks Missing", func(t *testing.T) {
		handler := newTestApp(t, nil)
		owner := signup(t, handler, "owner@example.com")
		intruder := signup(t, handler, "intruder@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/playlists", owner, map[string]string{"name": "Private"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to create playlist: %d", rec.Code)
		}

		var created struct {
			Playlist models.PlaylistView `json:"playlist"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		rec = doJSON(t, handler, http.MethodGet, "/api/playlists/"+created.Playlist.ID, intruder, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for foreign playlist, got %d", rec.Code)
		}
	})

	t.Run("Track Lifecycle", func(t *testing.T) {
		handler := newTestApp(t, nil)
		token := signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/playlists", token, map[string]string{"name": "Mix"})
		var created struct {
			Playlist models.PlaylistView `json:"playlist"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		playlistID := created.Playlist.ID

		rec = doJSON(t, handler, http.MethodPost, "/api/playlists/"+playlistID+"/tracks", token, map[string]any{
			"track": sampleTrack,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 adding track, got %d: %s", rec.Code, rec.Body.String())
		}

		var withTracks models.PlaylistView
		if err := json.Unmarshal(rec.Body.Bytes(), &withTracks); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(withTracks.Tracks) != 1 || withTracks.Tracks[0].ID != "track-1" {
			t.Errorf("expected track in playlist, got %+v", withTracks.Tracks)
		}

		rec = doJSON(t, handler, http.MethodDelete, "/api/playlists/"+playlistID+"/tracks/track-1", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 removing track, got %d", rec.Code)
		}

		if err := json.Unmarshal(rec.Body.Bytes(), &withTracks); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(withTracks.Tracks) != 0 {
			t.Errorf("expected empty playlist, got %+v", withTracks.Tracks)
		}
	})

	t.Run("Update And Delete", func(t *testing.T) {
		handler := newTestApp(t, nil)
		token := signup(t, handler, "listener@example.com")

		rec := doJSON(t, handler, http.MethodPost, "/api/playlists", token, map[string]string{"name": "Mix"})
		var created struct {
			Playlist models.PlaylistView `json:"playlist"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		playlistID := created.Playlist.ID

		rec = doJSON(t, handler, http.MethodPut, "/api/playlists/"+playlistID, token, map[string]string{
			"name": "Renamed Mix",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 updating, got %d", rec.Code)
		}

		rec = doJSON(t, handler, http.MethodDelete, "/api/playlists/"+playlistID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 deleting, got %d", rec.Code)
		}

		rec = doJSON(t, handler, http.MethodGet, "/api/playlists/"+playlistID, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rec.Code)
		}
	})
}

func TestLikedSongsEndpoints(t *testing.T) {
	sampleTrack := models.Track{ID: "track-1", Title: "Sample"}

	handler := newTestApp(t, nil)
	token := signup(t, handler, "listener@example.com")

	t.Run("Like", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/liked-songs", token, map[string]any{"track": sampleTrack})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Duplicate Like", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/liked-songs", token, map[string]any{"track": sampleTrack})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for duplicate like, got %d", rec.Code)
		}
	})

	t.Run("List", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/liked-songs", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var payload struct {
			LikedSongs []models.TrackEntry `json:"likedSongs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.LikedSongs) != 1 || payload.LikedSongs[0].ID != "track-1" {
			t.Errorf("unexpected liked songs: %+v", payload.LikedSongs)
		}
	})

	t.Run("Unlike", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodDelete, "/api/liked-songs/track-1", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doJSON(t, handler, http.MethodGet, "/api/liked-songs", token, nil)
		var payload struct {
			LikedSongs []models.TrackEntry `json:"likedSongs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.LikedSongs) != 0 {
			t.Errorf("expected no liked songs, got %+v", payload.LikedSongs)
		}
	})
}

func TestRecentlyPlayedEndpoints(t *testing.T) {
	handler := newTestApp(t, nil)
	token := signup(t, handler, "listener@example.com")

	for _, id := range []string{"a", "b"} {
		rec := doJSON(t, handler, http.MethodPost, "/api/recently-played", token, map[string]any{
			"track": models.Track{ID: id, Title: "Track " + id},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 pushing %s, got %d", id, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/recently-played", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		RecentlyPlayed []models.PlayEntry `json:"recentlyPlayed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.RecentlyPlayed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payload.RecentlyPlayed))
	}
	if payload.RecentlyPlayed[0].Track.ID != "b" {
		t.Errorf("expected most recent first, got %s", payload.RecentlyPlayed[0].Track.ID)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/recently-played", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 clearing history, got %d", rec.Code)
	}
}

func TestFollowEndpoints(t *testing.T) {
	handler := newTestApp(t, nil)
	token := signup(t, handler, "listener@example.com")

	followBody := map[string]any{
		"platform": "audius",
		"artistData": map[string]any{
			"name":           "Artist",
			"handle":         "artist",
			"follower_count": 1200,
		},
	}

	t.Run("Follow", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/follow/artist-1", token, followBody)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Duplicate Follow", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/follow/artist-1", token, followBody)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Following", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/follow", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var payload struct {
			Following []models.FollowedArtist `json:"following"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.Following) != 1 || payload.Following[0].ID != "artist-1" {
			t.Errorf("unexpected follows: %+v", payload.Following)
		}
	})

	t.Run("Unfollow", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodDelete, "/api/follow/artist-1?platform=audius", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doJSON(t, handler, http.MethodGet, "/api/follow", token, nil)
		var payload struct {
			Following []models.FollowedArtist `json:"following"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.Following) != 0 {
			t.Errorf("expected no follows, got %+v", payload.Following)
		}
	})
}
