package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"musicmem/internal/core"
)

const (
	// MaxTracksPerRequest is the Web API limit for adding tracks in one call
	MaxTracksPerRequest = 100
	// PlaylistPageSize is used when paging through playlist items
	PlaylistPageSize = 100
)

// Catalog implements core.Catalog on top of an authenticated Spotify client.
type Catalog struct {
	client *spotify.Client
	logger *zap.Logger
}

func NewCatalog(client *spotify.Client, logger *zap.Logger) *Catalog {
	return &Catalog{client: client, logger: logger}
}

func (c *Catalog) CurrentUser(ctx context.Context) (*core.User, error) {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return nil, wrapError("get current user", err)
	}

	return &core.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

func (c *Catalog) SearchTracks(ctx context.Context, query string, limit int) ([]core.Track, error) {
	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, wrapError("search", err)
	}

	if results.Tracks == nil {
		return nil, nil
	}

	tracks := make([]core.Track, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&results.Tracks.Tracks[i]))
	}

	return tracks, nil
}

func (c *Catalog) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, wrapError("get track", err)
	}

	result := convertTrack(track)
	return &result, nil
}

func (c *Catalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*core.Playlist, error) {
	playlist, err := c.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, wrapError("create playlist", err)
	}

	c.logger.Debug("Playlist created",
		zap.String("playlistID", string(playlist.ID)),
		zap.String("userID", userID))

	return &core.Playlist{
		ID:          string(playlist.ID),
		Name:        playlist.Name,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs["spotify"],
		Public:      playlist.IsPublic,
	}, nil
}

// AddTracks appends tracks in order, batching to the per-request limit.
func (c *Catalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotify.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotify.ID(id))
	}

	for start := 0; start < len(ids); start += MaxTracksPerRequest {
		end := min(start+MaxTracksPerRequest, len(ids))
		if _, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[start:end]...); err != nil {
			return wrapError("add tracks to playlist", err)
		}
	}

	c.logger.Debug("Tracks added to playlist",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(ids)))

	return nil
}

func (c *Catalog) GetPlaylist(ctx context.Context, playlistID string) (*core.Playlist, error) {
	id := spotify.ID(playlistID)

	playlist, err := c.client.GetPlaylist(ctx, id, spotify.Fields("id,name,description,public,external_urls"))
	if err != nil {
		return nil, wrapError("get playlist", err)
	}

	result := &core.Playlist{
		ID:          string(playlist.ID),
		Name:        playlist.Name,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs["spotify"],
		Public:      playlist.IsPublic,
	}

	offset := 0
	for {
		items, err := c.client.GetPlaylistItems(ctx, id,
			spotify.Limit(PlaylistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, wrapError("get playlist items", err)
		}

		for i := range items.Items {
			// Episodes and unavailable items carry no track
			track := items.Items[i].Track.Track
			if track == nil {
				continue
			}
			addedAt, _ := time.Parse(time.RFC3339, items.Items[i].AddedAt)
			result.Tracks = append(result.Tracks, core.PlaylistTrack{
				Track:   convertTrack(track),
				AddedAt: addedAt,
			})
		}

		if len(items.Items) < PlaylistPageSize {
			break
		}
		offset += PlaylistPageSize
	}

	c.logger.Debug("Retrieved playlist",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(result.Tracks)))

	return result, nil
}

// RemoveTrack removes every occurrence of trackID from the playlist.
func (c *Catalog) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	if _, err := c.client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), spotify.ID(trackID)); err != nil {
		return wrapError("remove track from playlist", err)
	}

	c.logger.Debug("Track removed from playlist",
		zap.String("playlistID", playlistID),
		zap.String("trackID", trackID))

	return nil
}

// DeletePlaylist unfollows the playlist, which is how the Web API deletes one.
func (c *Catalog) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := c.client.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return wrapError("unfollow playlist", err)
	}
	return nil
}

func convertTrack(track *spotify.FullTrack) core.Track {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	return core.Track{
		ID:         string(track.ID),
		Title:      track.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      track.Album.Name,
		PreviewURL: track.PreviewURL,
		URL:        track.ExternalURLs["spotify"],
		Duration:   time.Duration(track.Duration) * time.Millisecond,
	}
}

// wrapError marks rejected credentials as an auth error so callers can send
// the user back through login.
func wrapError(op string, err error) error {
	if status := errorStatus(err); status == http.StatusUnauthorized {
		return &core.AuthError{Kind: core.AuthExpired, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func errorStatus(err error) int {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
