package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoValidTracks is wrapped by an empty-selection WriteError when tracks were selected
// but none of them exists in the catalog.
var ErrNoValidTracks = errors.New("no valid tracks selected")

// Pipeline runs the preference-to-playlist flow for one request at a time.
type Pipeline struct {
	generator  *Generator
	writer     *Writer
	maintainer *Maintainer
	logger     *zap.Logger
}

func NewPipeline(config *Config, llm TextGenerator, ledger SubmissionLedger, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		generator: NewGenerator(llm, &config.LLM, logger.Named("generator")),
		writer: NewWriter(WriterOptions{
			Public:           config.Spotify.PublicPlaylists,
			Compensate:       config.App.CompensateFailedWrites,
			RejectDuplicates: config.App.RejectDuplicateSubmissions,
		}, ledger, logger.Named("writer")),
		maintainer: NewMaintainer(logger.Named("maintenance")),
		logger:     logger,
	}
}

func (req *Request) now() time.Time {
	if req.Now.IsZero() {
		return time.Now()
	}
	return req.Now
}

// Recommend generates and resolves suggestions for the request's preferences.
func (p *Pipeline) Recommend(ctx context.Context, req *Request) []ResolvedTrack {
	return p.generator.Generate(ctx, req.Catalog, req.Preferences.Query(req.now()))
}

// Submit writes the selected tracks to a new playlist. Selected ids that the catalog
// does not know are dropped before writing.
func (p *Pipeline) Submit(ctx context.Context, req *Request, name string, selected []string) (*Playlist, error) {
	if len(selected) == 0 {
		return nil, &WriteError{Kind: WriteEmptySelection}
	}

	valid := make([]string, 0, len(selected))
	for _, id := range selected {
		if id == "" {
			continue
		}
		if _, err := req.Catalog.GetTrack(ctx, id); err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				return nil, err
			}
			p.logger.Warn("Dropping selected track that could not be fetched",
				zap.String("trackID", id),
				zap.Error(err))
			continue
		}
		valid = append(valid, id)
	}

	if len(valid) == 0 {
		return nil, &WriteError{Kind: WriteEmptySelection, Err: ErrNoValidTracks}
	}

	owner := req.Preferences.SeniorName
	if owner == "" {
		owner = req.DisplayName
	}

	return p.writer.Write(ctx, req.Catalog, WriteRequest{
		UserID:      req.UserID,
		Owner:       owner,
		Name:        name,
		Preferences: req.Preferences,
		TrackIDs:    valid,
	})
}

func (p *Pipeline) Playlist(ctx context.Context, req *Request, playlistID string) (*Playlist, error) {
	return p.maintainer.View(ctx, req.Catalog, playlistID)
}

// RemoveTrack removes a track from a playlist and returns the re-fetched playlist.
func (p *Pipeline) RemoveTrack(ctx context.Context, req *Request, playlistID, trackID string) (*Playlist, error) {
	if err := p.maintainer.RemoveTrack(ctx, req.Catalog, playlistID, trackID); err != nil {
		return nil, err
	}
	return p.maintainer.View(ctx, req.Catalog, playlistID)
}
