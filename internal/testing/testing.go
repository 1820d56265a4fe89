// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/desertthunder/streamtunes/internal/catalog"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockCatalog is a configurable test double for [catalog.Service]
type MockCatalog struct {
	SearchFn            func(ctx context.Context, text, resultType string, limit, offset int) catalog.TrackList
	TrendingFn          func(ctx context.Context, timeRange catalog.TimeRange, limit int) catalog.TrackList
	PopularFn           func(ctx context.Context, limit int) catalog.TrackList
	RecentTracksFn      func(ctx context.Context, limit int) catalog.TrackList
	TrendingArtistsFn   func(ctx context.Context, limit int) catalog.Envelope
	TrendingPlaylistsFn func(ctx context.Context, limit int) catalog.Envelope
	TrackFn             func(ctx context.Context, id string) (catalog.Envelope, error)
	StreamURLFn         func(ctx context.Context, id string) (catalog.Envelope, error)
	UserFn              func(ctx context.Context, id string) (catalog.Envelope, error)
	UserTracksFn        func(ctx context.Context, id string, limit int) (catalog.Envelope, error)
	PlaylistFn          func(ctx context.Context, id string) (catalog.Envelope, error)
}

func (m *MockCatalog) Search(ctx context.Context, text, resultType string, limit, offset int) catalog.TrackList {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, text, resultType, limit, offset)
	}
	return catalog.EmptyTrackList()
}

func (m *MockCatalog) Trending(ctx context.Context, timeRange catalog.TimeRange, limit int) catalog.TrackList {
	if m.TrendingFn != nil {
		return m.TrendingFn(ctx, timeRange, limit)
	}
	return catalog.EmptyTrackList()
}

func (m *MockCatalog) Popular(ctx context.Context, limit int) catalog.TrackList {
	if m.PopularFn != nil {
		return m.PopularFn(ctx, limit)
	}
	return catalog.EmptyTrackList()
}

func (m *MockCatalog) RecentTracks(ctx context.Context, limit int) catalog.TrackList {
	if m.RecentTracksFn != nil {
		return m.RecentTracksFn(ctx, limit)
	}
	return catalog.EmptyTrackList()
}

func (m *MockCatalog) TrendingArtists(ctx context.Context, limit int) catalog.Envelope {
	if m.TrendingArtistsFn != nil {
		return m.TrendingArtistsFn(ctx, limit)
	}
	return catalog.EmptyEnvelope()
}

func (m *MockCatalog) TrendingPlaylists(ctx context.Context, limit int) catalog.Envelope {
	if m.TrendingPlaylistsFn != nil {
		return m.TrendingPlaylistsFn(ctx, limit)
	}
	return catalog.EmptyEnvelope()
}

func (m *MockCatalog) Track(ctx context.Context, id string) (catalog.Envelope, error) {
	if m.TrackFn != nil {
		return m.TrackFn(ctx, id)
	}
	return catalog.EmptyEnvelope(), nil
}

func (m *MockCatalog) StreamURL(ctx context.Context, id string) (catalog.Envelope, error) {
	if m.StreamURLFn != nil {
		return m.StreamURLFn(ctx, id)
	}
	return catalog.EmptyEnvelope(), nil
}

func (m *MockCatalog) User(ctx context.Context, id string) (catalog.Envelope, error) {
	if m.UserFn != nil {
		return m.UserFn(ctx, id)
	}
	return catalog.EmptyEnvelope(), nil
}

func (m *MockCatalog) UserTracks(ctx context.Context, id string, limit int) (catalog.Envelope, error) {
	if m.UserTracksFn != nil {
		return m.UserTracksFn(ctx, id, limit)
	}
	return catalog.EmptyEnvelope(), nil
}

func (m *MockCatalog) Playlist(ctx context.Context, id string) (catalog.Envelope, error) {
	if m.PlaylistFn != nil {
		return m.PlaylistFn(ctx, id)
	}
	return catalog.EmptyEnvelope(), nil
}

var _ catalog.Service = (*MockCatalog)(nil)
