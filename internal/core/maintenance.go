package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Maintainer views and edits playlists that were already written.
type Maintainer struct {
	logger *zap.Logger
}

func NewMaintainer(logger *zap.Logger) *Maintainer {
	return &Maintainer{logger: logger}
}

func (m *Maintainer) View(ctx context.Context, catalog Catalog, playlistID string) (*Playlist, error) {
	playlist, err := catalog.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	return playlist, nil
}

// RemoveTrack removes every occurrence of trackID from the playlist. Callers re-fetch
// the playlist afterwards; nothing is cached locally.
func (m *Maintainer) RemoveTrack(ctx context.Context, catalog Catalog, playlistID, trackID string) error {
	if trackID == "" {
		return fmt.Errorf("track id is required")
	}

	if err := catalog.RemoveTrack(ctx, playlistID, trackID); err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	m.logger.Info("Track removed from playlist",
		zap.String("playlistID", playlistID),
		zap.String("trackID", trackID))
	return nil
}
