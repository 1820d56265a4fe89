package models

import "time"

// Artwork holds the pixel-dimension variants of a catalog image.
type Artwork struct {
	Small  string `json:"150x150,omitempty"`
	Medium string `json:"480x480,omitempty"`
	Large  string `json:"1000x1000,omitempty"`
}

// TrackArtist is the owning-artist summary embedded in a catalog track.
type TrackArtist struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Handle         string  `json:"handle"`
	ProfilePicture Artwork `json:"profile_picture"`
	FollowerCount  int     `json:"follower_count,omitempty"`
}

// Track is the uniform representation of a catalog track.
//
// Produced by the catalog normalizer and stored verbatim as an embedded
// document in library collections, so the field set matches the upstream
// Audius track payload.
type Track struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Artwork       Artwork     `json:"artwork"`
	User          TrackArtist `json:"user"`
	Duration      int         `json:"duration"`
	Genre         string      `json:"genre,omitempty"`
	Mood          string      `json:"mood,omitempty"`
	ReleaseDate   string      `json:"release_date,omitempty"`
	RepostCount   int         `json:"repost_count"`
	FavoriteCount int         `json:"favorite_count"`
	PlayCount     int         `json:"play_count"`
	Permalink     string      `json:"permalink,omitempty"`
	Source        string      `json:"source,omitempty"`
	URL           string      `json:"url,omitempty"`
}

// TrackEntry is a track embedded in a library collection (liked songs,
// playlist tracks) together with the time it was added.
type TrackEntry struct {
	Track
	AddedAt time.Time `json:"addedAt"`
}

// PlayEntry is a recently-played record.
type PlayEntry struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"playedAt"`
}

// MaxRecentlyPlayed caps the per-user recently played history.
const MaxRecentlyPlayed = 50

// FollowedArtist is an external catalog artist a user follows.
type FollowedArtist struct {
	Platform       string    `json:"platform"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Handle         string    `json:"handle"`
	ProfilePicture Artwork   `json:"profilePicture"`
	FollowedAt     time.Time `json:"followedAt"`
}
