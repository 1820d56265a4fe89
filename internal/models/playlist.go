package models

import (
	"fmt"
	"time"
)

// Playlist is a user-owned track collection in the account store.
//
// Tracks are stored separately (see repositories.LibraryRepository) and
// joined into a PlaylistView for API responses.
type Playlist struct {
	id          string
	sequence    int
	userID      string
	name        string
	description string
	coverImage  string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewPlaylist creates a playlist owned by the given user.
func NewPlaylist(sequence int, userID, name, description string) *Playlist {
	now := time.Now()
	return &Playlist{
		sequence:    sequence,
		userID:      userID,
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (p *Playlist) ID() string            { return p.id }
func (p *Playlist) Sequence() int         { return p.sequence }
func (p *Playlist) UserID() string        { return p.userID }
func (p *Playlist) Name() string          { return p.name }
func (p *Playlist) Description() string   { return p.description }
func (p *Playlist) CoverImage() string    { return p.coverImage }
func (p *Playlist) CreatedAt() time.Time  { return p.createdAt }
func (p *Playlist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Playlist) DeletedAt() *time.Time { return p.deletedAt }

func (p *Playlist) SetID(id string)           { p.id = id }
func (p *Playlist) SetName(name string)       { p.name = name }
func (p *Playlist) SetDescription(d string)   { p.description = d }
func (p *Playlist) SetCoverImage(url string)  { p.coverImage = url }
func (p *Playlist) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Playlist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Playlist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks that the playlist has an owner and a name.
func (p *Playlist) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("playlist has no owner")
	}
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

// PlaylistView is the public representation of a playlist returned by the API.
type PlaylistView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CoverImage  string       `json:"coverImage"`
	Tracks      []TrackEntry `json:"tracks"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// View returns the API projection of the playlist with its tracks attached.
func (p *Playlist) View(tracks []TrackEntry) PlaylistView {
	if tracks == nil {
		tracks = []TrackEntry{}
	}
	return PlaylistView{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		CoverImage:  p.coverImage,
		Tracks:      tracks,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}
