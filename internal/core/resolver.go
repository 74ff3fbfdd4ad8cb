package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Resolver maps free-text song suggestions to catalog tracks. The first search hit wins.
type Resolver struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewResolver(catalog Catalog, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger,
	}
}

// SearchQuery builds the combined song and artist filter for a catalog search.
func SearchQuery(song, artist string) string {
	return fmt.Sprintf("track:%s artist:%s", strings.TrimSpace(song), strings.TrimSpace(artist))
}

// Resolve returns the id of the first catalog match. Lookup failures report no match.
func (r *Resolver) Resolve(ctx context.Context, song, artist string) (string, bool) {
	tracks, err := r.catalog.SearchTracks(ctx, SearchQuery(song, artist), 1)
	if err != nil {
		r.logger.Warn("Catalog search failed",
			zap.Error(&ResolutionError{Song: song, Artist: artist, Err: err}))
		return "", false
	}

	if len(tracks) == 0 || tracks[0].ID == "" {
		r.logger.Debug("No track found",
			zap.String("song", song),
			zap.String("artist", artist))
		return "", false
	}

	return tracks[0].ID, true
}

// ResolveTrack resolves a suggestion and looks up its preview snippet.
func (r *Resolver) ResolveTrack(ctx context.Context, s SuggestedTrack) ResolvedTrack {
	resolved := ResolvedTrack{SuggestedTrack: s}

	trackID, ok := r.Resolve(ctx, s.Song, s.Artist)
	if !ok {
		return resolved
	}
	resolved.TrackID = trackID

	track, err := r.catalog.GetTrack(ctx, trackID)
	if err != nil {
		r.logger.Warn("Failed to fetch track details",
			zap.String("trackID", trackID),
			zap.Error(err))
		return resolved
	}
	if track != nil {
		resolved.Snippet = track.PreviewURL
	}

	return resolved
}
