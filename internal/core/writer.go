package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"musicmem/pkg/fuzzy"
)

const (
	// PlaylistNamePrefix marks playlists created by this service in the catalog UI
	PlaylistNamePrefix = "mm_"
	// DefaultPlaylistName is used when the submission carries no playlist name
	DefaultPlaylistName = "My Playlist"
	// MaxDescriptionLength is the catalog's playlist description limit
	MaxDescriptionLength = 300
)

// WriteRequest is one playlist submission.
type WriteRequest struct {
	UserID      string
	Owner       string
	Name        string
	Preferences PreferenceSet
	TrackIDs    []string
}

type WriterOptions struct {
	Public           bool
	Compensate       bool
	RejectDuplicates bool
}

type Writer struct {
	options    WriterOptions
	ledger     SubmissionLedger
	normalizer *fuzzy.Normalizer
	logger     *zap.Logger
}

// NewWriter creates a playlist writer. ledger may be nil to disable duplicate detection.
func NewWriter(options WriterOptions, ledger SubmissionLedger, logger *zap.Logger) *Writer {
	return &Writer{
		options:    options,
		ledger:     ledger,
		normalizer: fuzzy.NewNormalizer(),
		logger:     logger,
	}
}

// PlaylistName namespaces a playlist name with the service prefix and the owner's name.
func PlaylistName(owner, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlaylistName
	}
	return fmt.Sprintf("%s%s_%s", PlaylistNamePrefix, strings.TrimSpace(owner), name)
}

// PlaylistDescription records the submitted preferences as genres_mood_language_age_artists.
func PlaylistDescription(p PreferenceSet) string {
	parts := []string{p.Genres, p.Mood, p.Language, strconv.Itoa(p.Age), p.Artists}
	for i := range parts {
		parts[i] = strings.ReplaceAll(parts[i], "|", "")
	}

	description := strings.Join(parts, "_")
	if runes := []rune(description); len(runes) > MaxDescriptionLength {
		description = string(runes[:MaxDescriptionLength])
	}
	return description
}

// Write creates a playlist owned by req.UserID and appends req.TrackIDs in order.
func (w *Writer) Write(ctx context.Context, catalog Catalog, req WriteRequest) (*Playlist, error) {
	if len(req.TrackIDs) == 0 {
		return nil, &WriteError{Kind: WriteEmptySelection}
	}

	name := PlaylistName(req.Owner, req.Name)
	fingerprint := w.fingerprint(req.UserID, name, req.TrackIDs)

	if w.ledger != nil && w.ledger.Has(fingerprint) {
		w.logger.Warn("Duplicate playlist submission",
			zap.String("userID", req.UserID),
			zap.String("name", name),
			zap.Bool("rejected", w.options.RejectDuplicates))
		if w.options.RejectDuplicates {
			return nil, &WriteError{Kind: WriteDuplicateSubmission}
		}
	}

	playlist, err := catalog.CreatePlaylist(ctx, req.UserID, name, PlaylistDescription(req.Preferences), w.options.Public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if err := catalog.AddTracks(ctx, playlist.ID, req.TrackIDs); err != nil {
		w.logger.Error("Failed to add tracks to new playlist",
			zap.String("playlistID", playlist.ID),
			zap.Int("tracks", len(req.TrackIDs)),
			zap.Error(err))

		orphanID := playlist.ID
		if w.options.Compensate {
			if delErr := catalog.DeletePlaylist(ctx, playlist.ID); delErr != nil {
				w.logger.Warn("Failed to remove empty playlist",
					zap.String("playlistID", playlist.ID),
					zap.Error(delErr))
			} else {
				orphanID = ""
			}
		}

		return nil, &WriteError{Kind: WritePartialFailure, PlaylistID: orphanID, Err: err}
	}

	if w.ledger != nil {
		w.ledger.Add(fingerprint)
	}

	playlist.Name = name
	playlist.Public = w.options.Public
	playlist.Tracks = make([]PlaylistTrack, 0, len(req.TrackIDs))
	for _, id := range req.TrackIDs {
		playlist.Tracks = append(playlist.Tracks, PlaylistTrack{Track: Track{ID: id}})
	}

	w.logger.Info("Playlist created",
		zap.String("playlistID", playlist.ID),
		zap.String("name", name),
		zap.Int("tracks", len(req.TrackIDs)))

	return playlist, nil
}

// fingerprint identifies a submission. Track ids are case sensitive and kept verbatim.
func (w *Writer) fingerprint(userID, name string, trackIDs []string) string {
	return userID + "\x00" + w.normalizer.Normalize(name) + "\x00" + strings.Join(trackIDs, ",")
}
