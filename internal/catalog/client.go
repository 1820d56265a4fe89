package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultAppName identifies this application on every outbound catalog request.
const DefaultAppName = "StreamTunes"

// StatusError reports a non-2xx response from the catalog.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned %d for %s", e.Code, e.Endpoint)
}

// Options configures a catalog [Client].
type Options struct {
	DirectoryURL      string        // discovery endpoint, defaults to DefaultDirectoryURL
	AppName           string        // app_name query parameter, defaults to DefaultAppName
	Timeout           time.Duration // outbound request timeout; 0 means none
	RequestsPerSecond float64       // upstream rate limit; 0 disables limiting
	HTTPClient        *http.Client  // overrides Timeout when set
	Logger            *log.Logger
}

// Client implements [Service] against the live catalog network.
//
// Verbatim per-operation semantics, including which operations degrade to
// the empty envelope and which propagate errors, are documented on the
// [Service] interface.
type Client struct {
	resolver   *Resolver
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	appName    string
}

// New creates a catalog client. The host is resolved lazily on first use.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	appName := opts.AppName
	if appName == "" {
		appName = DefaultAppName
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		resolver:   NewResolver(opts.DirectoryURL, httpClient, logger),
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		appName:    appName,
	}
}

// Resolver exposes the host resolver, e.g. for eager resolution at startup.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// get resolves the host, appends the app_name parameter and performs a GET.
// Non-2xx responses return the body alongside a *StatusError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	host, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("app_name", c.appName)
	fullURL := host + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &StatusError{Endpoint: path, Code: resp.StatusCode}
	}

	return body, nil
}

// trendingTracks fetches /v1/tracks/trending with optional time range and
// genre filters.
func (c *Client) trendingTracks(ctx context.Context, timeRange TimeRange, genre string, limit int) (TrackList, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(limit))
	if timeRange != "" {
		query.Set("time", string(timeRange))
	}
	if genre != "" {
		query.Set("genre", genre)
	}

	body, err := c.get(ctx, "/v1/tracks/trending", query)
	if err != nil {
		return EmptyTrackList(), err
	}

	tracks, _ := normalizeTracks(body)
	return tracks, nil
}

// Search performs a full-text track search.
//
// The tracks/search endpoint serves every result type; it has proven more
// reliable than the entity-specific search endpoints. Two policies apply
// when the query is a recognized genre token:
//
//   - a non-2xx primary response substitutes the trending list wholesale
//   - a short primary result at offset 0 is supplemented from trending
//     filtered by that genre, merged after the primary items without
//     duplicates and truncated to limit
//
// All other failures degrade to the empty list.
func (c *Client) Search(ctx context.Context, text, resultType string, limit, offset int) TrackList {
	limit = clampLimit(limit, DefaultSearchLimit)
	offset = clampOffset(offset)

	query := url.Values{}
	query.Set("query", text)
	query.Set("limit", fmt.Sprint(limit))
	query.Set("offset", fmt.Sprint(offset))

	logger := shared.WithLogger(c.logger, "op", "search", "query", text, "type", resultType, "limit", limit, "offset", offset)

	body, err := c.get(ctx, "/v1/tracks/search", query)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && IsGenreToken(text) {
			logger.Warn("search returned error status, substituting trending", "status", statusErr.Code)
			if fallback, ferr := c.trendingTracks(ctx, "", "", limit); ferr == nil {
				return fallback
			}
		}
		logger.Error("search failed", "err", err)
		return EmptyTrackList()
	}

	primary, present := normalizeTracks(body)
	if !present {
		return primary
	}

	if offset == 0 && len(primary.Data) < limit && IsGenreToken(text) {
		supplement, serr := c.trendingTracks(ctx, "", text, limit)
		if serr != nil {
			logger.Error("failed to fetch supplementary tracks", "err", serr)
			return primary
		}
		return TrackList{Data: mergeUnique(primary.Data, supplement.Data, limit)}
	}

	return primary
}

// Trending returns trending tracks for the given time range.
func (c *Client) Trending(ctx context.Context, timeRange TimeRange, limit int) TrackList {
	limit = clampLimit(limit, DefaultListLimit)
	timeRange = NormalizeTimeRange(string(timeRange))

	tracks, err := c.trendingTracks(ctx, timeRange, "", limit)
	if err != nil {
		c.logger.Error("failed to fetch trending tracks", "time", timeRange, "err", err)
		return EmptyTrackList()
	}

	return tracks
}

// Popular returns all-time trending tracks re-sorted by descending play
// count. The sort is stable, so the order of equal-play-count items is
// unspecified beyond input order.
func (c *Client) Popular(ctx context.Context, limit int) TrackList {
	limit = clampLimit(limit, DefaultListLimit)

	tracks, err := c.trendingTracks(ctx, TimeRangeAllTime, "", limit)
	if err != nil {
		c.logger.Error("failed to fetch popular tracks", "err", err)
		return EmptyTrackList()
	}

	sort.SliceStable(tracks.Data, func(i, j int) bool {
		return tracks.Data[i].PlayCount > tracks.Data[j].PlayCount
	})

	return tracks
}

// RecentTracks returns the newest catalog tracks. There is no dedicated
// endpoint; this is a search with an empty query sorted by release date.
func (c *Client) RecentTracks(ctx context.Context, limit int) TrackList {
	limit = clampLimit(limit, DefaultListLimit)

	query := url.Values{}
	query.Set("query", "")
	query.Set("limit", fmt.Sprint(limit))
	query.Set("sort", "release_date")

	body, err := c.get(ctx, "/v1/tracks/search", query)
	if err != nil {
		c.logger.Error("failed to fetch recent tracks", "err", err)
		return EmptyTrackList()
	}

	tracks, _ := normalizeTracks(body)
	return tracks
}

// TrendingArtists returns the most-followed artists. The catalog has no
// trending endpoint for users, so this is a users search sorted by
// follower count.
func (c *Client) TrendingArtists(ctx context.Context, limit int) Envelope {
	limit = clampLimit(limit, DefaultListLimit)

	query := url.Values{}
	query.Set("query", "")
	query.Set("limit", fmt.Sprint(limit))
	query.Set("sort", "follower_count")

	body, err := c.get(ctx, "/v1/users/search", query)
	if err != nil {
		c.logger.Error("failed to fetch trending artists", "err", err)
		return EmptyEnvelope()
	}

	return normalizeRaw(body)
}

// TrendingPlaylists returns the most-saved playlists. The catalog has no
// trending endpoint for playlists, so this is a playlists search sorted by
// save count.
func (c *Client) TrendingPlaylists(ctx context.Context, limit int) Envelope {
	limit = clampLimit(limit, DefaultListLimit)

	query := url.Values{}
	query.Set("query", "")
	query.Set("limit", fmt.Sprint(limit))
	query.Set("sort", "save_count")

	body, err := c.get(ctx, "/v1/playlists/search", query)
	if err != nil {
		c.logger.Error("failed to fetch trending playlists", "err", err)
		return EmptyEnvelope()
	}

	return normalizeRaw(body)
}

// entity fetches a single-entity endpoint and passes the payload through.
// Unlike the list operations, errors propagate to the caller.
func (c *Client) entity(ctx context.Context, path string, query url.Values) (Envelope, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return Envelope{}, err
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	return envelope, nil
}

// Track retrieves a single track by ID.
func (c *Client) Track(ctx context.Context, id string) (Envelope, error) {
	return c.entity(ctx, "/v1/tracks/"+url.PathEscape(id), nil)
}

// StreamURL verifies a track exists, then returns its deterministic
// streaming URL {host}/v1/tracks/{id}/stream.
//
// Returns [shared.ErrTrackNotFound] when the catalog reports no record for
// the ID; this is the one operation where a missing record must stop the
// caller instead of degrading.
func (c *Client) StreamURL(ctx context.Context, id string) (Envelope, error) {
	track, err := c.Track(ctx, id)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return Envelope{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
		}
		return Envelope{}, err
	}

	if isNullData(track.Data) {
		return Envelope{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	host, err := c.resolver.Resolve(ctx)
	if err != nil {
		return Envelope{}, err
	}

	return StringEnvelope(fmt.Sprintf("%s/v1/tracks/%s/stream", host, url.PathEscape(id))), nil
}

// User retrieves a single catalog user by ID.
func (c *Client) User(ctx context.Context, id string) (Envelope, error) {
	return c.entity(ctx, "/v1/users/"+url.PathEscape(id), nil)
}

// UserTracks retrieves a catalog user's tracks.
func (c *Client) UserTracks(ctx context.Context, id string, limit int) (Envelope, error) {
	limit = clampLimit(limit, DefaultListLimit)

	query := url.Values{}
	query.Set("limit", fmt.Sprint(limit))

	return c.entity(ctx, "/v1/users/"+url.PathEscape(id)+"/tracks", query)
}

// Playlist retrieves a single catalog playlist by ID.
func (c *Client) Playlist(ctx context.Context, id string) (Envelope, error) {
	return c.entity(ctx, "/v1/playlists/"+url.PathEscape(id), nil)
}

var _ Service = (*Client)(nil)
