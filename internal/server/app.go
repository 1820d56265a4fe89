package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/catalog"
	"github.com/desertthunder/streamtunes/internal/repositories"
	"github.com/desertthunder/streamtunes/internal/shared"
)

// App bundles the router and listener for the StreamTunes API.
type App struct {
	router *BasicRouter
	server *http.Server
	logger *log.Logger
}

// Deps carries the collaborators the route table needs.
type Deps struct {
	Catalog   catalog.Service
	Users     *repositories.UserRepository
	Playlists *repositories.PlaylistRepository
	Library   *repositories.LibraryRepository
}

// NewApp builds the full route table with logging and CORS middleware.
func NewApp(cfg *shared.Config, deps Deps, logger *log.Logger) *App {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(RequestLogger(logger), CORS(cfg.Server.CORSOrigin))

	auth := Authenticate(cfg.Auth.JWTSecret)

	catalogHandler := NewCatalogHandler(deps.Catalog, shared.WithLogger(logger, "handler", "catalog"))
	authHandler := NewAuthHandler(deps.Users, cfg, shared.WithLogger(logger, "handler", "auth"))
	libraryHandler := NewLibraryHandler(deps.Playlists, deps.Library, shared.WithLogger(logger, "handler", "library"))

	router.Handle("GET /health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	// Catalog proxy (public)
	router.Handle("GET /api/catalog/search", http.HandlerFunc(catalogHandler.Search))
	router.Handle("GET /api/catalog/trending", http.HandlerFunc(catalogHandler.Trending))
	router.Handle("GET /api/catalog/popular", http.HandlerFunc(catalogHandler.Popular))
	router.Handle("GET /api/catalog/recent", http.HandlerFunc(catalogHandler.Recent))
	router.Handle("GET /api/catalog/trending-artists", http.HandlerFunc(catalogHandler.TrendingArtists))
	router.Handle("GET /api/catalog/trending-playlists", http.HandlerFunc(catalogHandler.TrendingPlaylists))
	router.Handle("GET /api/catalog/tracks/{trackId}", http.HandlerFunc(catalogHandler.Track))
	router.Handle("GET /api/catalog/tracks/{trackId}/stream", http.HandlerFunc(catalogHandler.Stream))
	router.Handle("GET /api/catalog/users/{userId}", http.HandlerFunc(catalogHandler.User))
	router.Handle("GET /api/catalog/users/{userId}/tracks", http.HandlerFunc(catalogHandler.UserTracks))
	router.Handle("GET /api/catalog/playlists/{playlistId}", http.HandlerFunc(catalogHandler.Playlist))

	// Accounts
	router.Handle("POST /api/auth/signup", http.HandlerFunc(authHandler.Signup))
	router.Handle("POST /api/auth/login", http.HandlerFunc(authHandler.Login))
	router.Handle("GET /api/auth/me", auth(http.HandlerFunc(authHandler.Me)))
	router.Handle("GET /api/auth/google", http.HandlerFunc(authHandler.GoogleBegin))
	router.Handle("GET /api/auth/google/callback", http.HandlerFunc(authHandler.GoogleCallback))

	// Personal library (authenticated)
	router.Handle("POST /api/playlists", auth(http.HandlerFunc(libraryHandler.CreatePlaylist)))
	router.Handle("GET /api/playlists", auth(http.HandlerFunc(libraryHandler.ListPlaylists)))
	router.Handle("GET /api/playlists/{playlistId}", auth(http.HandlerFunc(libraryHandler.GetPlaylist)))
	router.Handle("PUT /api/playlists/{playlistId}", auth(http.HandlerFunc(libraryHandler.UpdatePlaylist)))
	router.Handle("DELETE /api/playlists/{playlistId}", auth(http.HandlerFunc(libraryHandler.DeletePlaylist)))
	router.Handle("POST /api/playlists/{playlistId}/tracks", auth(http.HandlerFunc(libraryHandler.AddPlaylistTrack)))
	router.Handle("DELETE /api/playlists/{playlistId}/tracks/{trackId}", auth(http.HandlerFunc(libraryHandler.RemovePlaylistTrack)))

	router.Handle("GET /api/liked-songs", auth(http.HandlerFunc(libraryHandler.LikedSongs)))
	router.Handle("POST /api/liked-songs", auth(http.HandlerFunc(libraryHandler.LikeTrack)))
	router.Handle("DELETE /api/liked-songs/{trackId}", auth(http.HandlerFunc(libraryHandler.UnlikeTrack)))

	router.Handle("GET /api/recently-played", auth(http.HandlerFunc(libraryHandler.RecentlyPlayed)))
	router.Handle("POST /api/recently-played", auth(http.HandlerFunc(libraryHandler.PushRecentlyPlayed)))
	router.Handle("DELETE /api/recently-played", auth(http.HandlerFunc(libraryHandler.ClearRecentlyPlayed)))

	router.Handle("GET /api/follow", auth(http.HandlerFunc(libraryHandler.Following)))
	router.Handle("POST /api/follow/{artistId}", auth(http.HandlerFunc(libraryHandler.Follow)))
	router.Handle("DELETE /api/follow/{artistId}", auth(http.HandlerFunc(libraryHandler.Unfollow)))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	return &App{
		router: router,
		server: &http.Server{Addr: addr, Handler: router},
		logger: logger,
	}
}

// Handler exposes the assembled router, e.g. for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
		return a.server.Shutdown(context.Background())
	}
}
