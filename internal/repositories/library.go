package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/streamtunes/internal/models"
	"github.com/desertthunder/streamtunes/internal/shared"
)

// LibraryRepository manages the per-user track collections: liked songs,
// playlist tracks, recently played history and external artist follows.
//
// Catalog tracks are stored verbatim as JSON documents, mirroring the
// embedded sub-document layout the frontend expects.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new [LibraryRepository] with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// LikeTrack adds a track to a user's liked songs.
// Returns shared.ErrAlreadyLiked when the track is already in the collection.
func (r *LibraryRepository) LikeTrack(userID string, track models.Track) error {
	trackJSON, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode track: %w", err)
	}

	query := `
		INSERT INTO liked_songs (id, user_id, track_id, track_json, added_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, shared.GenerateID(), userID, track.ID, string(trackJSON), time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return shared.ErrAlreadyLiked
		}
		return fmt.Errorf("failed to insert liked song: %w", err)
	}

	return nil
}

// UnlikeTrack removes a track from a user's liked songs. Removing a track
// that was never liked is not an error.
func (r *LibraryRepository) UnlikeTrack(userID, trackID string) error {
	_, err := r.db.Exec("DELETE FROM liked_songs WHERE user_id = ? AND track_id = ?", userID, trackID)
	if err != nil {
		return fmt.Errorf("failed to delete liked song: %w", err)
	}
	return nil
}

// LikedSongs returns a user's liked songs, most recently added first.
func (r *LibraryRepository) LikedSongs(userID string) ([]models.TrackEntry, error) {
	query := `
		SELECT track_json, added_at FROM liked_songs
		WHERE user_id = ?
		ORDER BY added_at DESC
	`
	return r.queryTrackEntries(query, userID)
}

// AddPlaylistTrack appends a track to a playlist.
func (r *LibraryRepository) AddPlaylistTrack(playlistID string, track models.Track) error {
	trackJSON, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode track: %w", err)
	}

	query := `
		INSERT INTO playlist_tracks (id, playlist_id, track_id, track_json, added_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, shared.GenerateID(), playlistID, track.ID, string(trackJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert playlist track: %w", err)
	}

	return nil
}

// RemovePlaylistTrack removes every occurrence of a track from a playlist.
func (r *LibraryRepository) RemovePlaylistTrack(playlistID, trackID string) error {
	_, err := r.db.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist track: %w", err)
	}
	return nil
}

// PlaylistTracks returns a playlist's tracks in insertion order.
func (r *LibraryRepository) PlaylistTracks(playlistID string) ([]models.TrackEntry, error) {
	query := `
		SELECT track_json, added_at FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY added_at ASC
	`
	return r.queryTrackEntries(query, playlistID)
}

// PushRecentlyPlayed records a play. An existing entry for the same track
// moves to the front, and the history is trimmed to models.MaxRecentlyPlayed.
func (r *LibraryRepository) PushRecentlyPlayed(userID string, track models.Track) error {
	trackJSON, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode track: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recently_played WHERE user_id = ? AND track_id = ?", userID, track.ID); err != nil {
		return fmt.Errorf("failed to dedupe recently played: %w", err)
	}

	query := `
		INSERT INTO recently_played (id, user_id, track_id, track_json, played_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, shared.GenerateID(), userID, track.ID, string(trackJSON), time.Now()); err != nil {
		return fmt.Errorf("failed to insert recently played: %w", err)
	}

	trim := `
		DELETE FROM recently_played
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM recently_played
			WHERE user_id = ?
			ORDER BY played_at DESC
			LIMIT ?
		)
	`
	if _, err := tx.Exec(trim, userID, userID, models.MaxRecentlyPlayed); err != nil {
		return fmt.Errorf("failed to trim recently played: %w", err)
	}

	return tx.Commit()
}

// RecentlyPlayed returns a user's play history, most recent first.
func (r *LibraryRepository) RecentlyPlayed(userID string) ([]models.PlayEntry, error) {
	query := `
		SELECT track_json, played_at FROM recently_played
		WHERE user_id = ?
		ORDER BY played_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently played: %w", err)
	}
	defer rows.Close()

	entries := []models.PlayEntry{}
	for rows.Next() {
		var (
			trackJSON string
			playedAt  time.Time
		)
		if err := rows.Scan(&trackJSON, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recently played: %w", err)
		}

		var track models.Track
		if err := json.Unmarshal([]byte(trackJSON), &track); err != nil {
			return nil, fmt.Errorf("failed to decode track document: %w", err)
		}

		entries = append(entries, models.PlayEntry{Track: track, PlayedAt: playedAt})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// ClearRecentlyPlayed empties a user's play history.
func (r *LibraryRepository) ClearRecentlyPlayed(userID string) error {
	_, err := r.db.Exec("DELETE FROM recently_played WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to clear recently played: %w", err)
	}
	return nil
}

// FollowArtist records an external artist follow.
// Returns shared.ErrAlreadyFollowing on duplicates.
func (r *LibraryRepository) FollowArtist(userID string, artist models.FollowedArtist) error {
	pictureJSON, err := json.Marshal(artist.ProfilePicture)
	if err != nil {
		return fmt.Errorf("failed to encode profile picture: %w", err)
	}

	followedAt := artist.FollowedAt
	if followedAt.IsZero() {
		followedAt = time.Now()
	}

	query := `
		INSERT INTO follows (id, user_id, platform, artist_id, name, handle, profile_picture_json, followed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, shared.GenerateID(), userID, artist.Platform, artist.ID, artist.Name, artist.Handle, string(pictureJSON), followedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return shared.ErrAlreadyFollowing
		}
		return fmt.Errorf("failed to insert follow: %w", err)
	}

	return nil
}

// UnfollowArtist removes an external artist follow.
func (r *LibraryRepository) UnfollowArtist(userID, platform, artistID string) error {
	_, err := r.db.Exec("DELETE FROM follows WHERE user_id = ? AND platform = ? AND artist_id = ?", userID, platform, artistID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// Following returns the artists a user follows, most recent first.
func (r *LibraryRepository) Following(userID string) ([]models.FollowedArtist, error) {
	query := `
		SELECT platform, artist_id, name, handle, profile_picture_json, followed_at
		FROM follows
		WHERE user_id = ?
		ORDER BY followed_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	artists := []models.FollowedArtist{}
	for rows.Next() {
		var (
			artist      models.FollowedArtist
			pictureJSON string
		)
		if err := rows.Scan(&artist.Platform, &artist.ID, &artist.Name, &artist.Handle, &pictureJSON, &artist.FollowedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		if err := json.Unmarshal([]byte(pictureJSON), &artist.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to decode profile picture: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// queryTrackEntries runs a (track_json, timestamp) query and decodes the documents.
func (r *LibraryRepository) queryTrackEntries(query string, args ...any) ([]models.TrackEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	entries := []models.TrackEntry{}
	for rows.Next() {
		var (
			trackJSON string
			addedAt   time.Time
		)
		if err := rows.Scan(&trackJSON, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}

		var entry models.TrackEntry
		if err := json.Unmarshal([]byte(trackJSON), &entry.Track); err != nil {
			return nil, fmt.Errorf("failed to decode track document: %w", err)
		}
		entry.AddedAt = addedAt

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
