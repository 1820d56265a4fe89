// package catalog implements the client for the upstream Audius catalog API.
//
// The catalog network is replicated across interchangeable discovery nodes;
// a Resolver picks one host per process and every operation builds its
// request against it. List-producing operations are best-effort: upstream
// failures are logged and degrade to an empty envelope. Single-entity
// lookups propagate their errors so callers can surface them.
package catalog

import (
	"context"
)

// Service is the interface the rest of the application consumes.
// Implemented by [Client]; handlers and the TUI depend on this so tests can
// substitute a double.
type Service interface {
	// Search performs a full-text track search. Failures degrade to an
	// empty list; genre-token queries fall back to trending (see Client.Search).
	Search(ctx context.Context, text, resultType string, limit, offset int) TrackList

	// Trending returns trending tracks for a time range (day, week, month, allTime).
	Trending(ctx context.Context, timeRange TimeRange, limit int) TrackList

	// Popular returns all-time trending tracks re-sorted by descending play count.
	Popular(ctx context.Context, limit int) TrackList

	// RecentTracks returns the newest tracks by release date.
	RecentTracks(ctx context.Context, limit int) TrackList

	// TrendingArtists returns the most-followed artists.
	TrendingArtists(ctx context.Context, limit int) Envelope

	// TrendingPlaylists returns the most-saved playlists.
	TrendingPlaylists(ctx context.Context, limit int) Envelope

	// Track retrieves a single track by ID.
	Track(ctx context.Context, id string) (Envelope, error)

	// StreamURL returns the streaming URL for a track.
	// Returns shared.ErrTrackNotFound when the catalog has no record of the ID.
	StreamURL(ctx context.Context, id string) (Envelope, error)

	// User retrieves a single catalog user by ID.
	User(ctx context.Context, id string) (Envelope, error)

	// UserTracks retrieves a catalog user's tracks.
	UserTracks(ctx context.Context, id string, limit int) (Envelope, error)

	// Playlist retrieves a single catalog playlist by ID.
	Playlist(ctx context.Context, id string) (Envelope, error)
}
