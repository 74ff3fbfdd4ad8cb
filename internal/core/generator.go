package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const generatorSystemPrompt = `You are an assistant helping the user create personalized music playlists using Spotify. ` +
	`Generate a list of songs and artists based on the user's preferences. ` +
	`Output the list as a JSON array like this: [{"song": <song_title>, "artist": <artist_name>}]. ` +
	`Do not return anything else than the JSON array.`

const generatorExample = `[
    {"song": "Hurt", "artist": "Johnny Cash"},
    {"song": "Yesterday", "artist": "The Beatles"},
    {"song": "Someone Like You", "artist": "Adele"}
]`

// GenerationQuery holds the constraints embedded into the generation prompt.
type GenerationQuery struct {
	Genres   string
	Artists  string
	Window   YearWindow
	Mood     string
	Language string
}

// suggestionPayload is one element of the backend's JSON array. Fields stay raw so a
// missing, empty or non-string value falls back to its Unknown placeholder without
// discarding the rest of the array.
type suggestionPayload struct {
	Song   json.RawMessage `json:"song"`
	Artist json.RawMessage `json:"artist"`
}

func (p suggestionPayload) toSuggestedTrack() SuggestedTrack {
	return SuggestedTrack{
		Song:   stringOr(p.Song, UnknownSong),
		Artist: stringOr(p.Artist, UnknownArtist),
	}
}

func stringOr(raw json.RawMessage, fallback string) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

type Generator struct {
	llm       TextGenerator
	maxTokens int
	logger    *zap.Logger
}

func NewGenerator(llm TextGenerator, config *LLMConfig, logger *zap.Logger) *Generator {
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	return &Generator{
		llm:       llm,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// BuildPrompt returns the system instruction, the worked example and the user instruction.
func BuildPrompt(q GenerationQuery) []ChatMessage {
	userContent := fmt.Sprintf(
		"Generate a playlist of songs in the genre: %s, mostly by artists: %s, released between %d and %d, "+
			"and matching the mood: %s. Should also be in the language %s",
		q.Genres, q.Artists, q.Window.Start, q.Window.End, q.Mood, q.Language)

	return []ChatMessage{
		{Role: RoleSystem, Content: generatorSystemPrompt},
		{Role: RoleAssistant, Content: generatorExample},
		{Role: RoleUser, Content: userContent},
	}
}

// ParseSuggestions decodes the backend text as a strict JSON array of song/artist objects.
func ParseSuggestions(raw string) ([]SuggestedTrack, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &GenerationError{
			Kind: GenerationMalformedResponse,
			Err:  errors.New("response is not a JSON array"),
		}
	}

	var payload []suggestionPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &GenerationError{Kind: GenerationMalformedResponse, Err: err}
	}

	suggestions := make([]SuggestedTrack, 0, len(payload))
	for _, p := range payload {
		suggestions = append(suggestions, p.toSuggestedTrack())
	}
	return suggestions, nil
}

// Suggest asks the backend for song suggestions without resolving them.
func (g *Generator) Suggest(ctx context.Context, q GenerationQuery) ([]SuggestedTrack, error) {
	g.logger.Debug("Requesting song suggestions",
		zap.String("genres", q.Genres),
		zap.String("artists", q.Artists),
		zap.Int("start_year", q.Window.Start),
		zap.Int("end_year", q.Window.End),
		zap.String("mood", q.Mood),
		zap.String("language", q.Language))

	content, err := g.llm.Complete(ctx, CompletionRequest{
		Messages:  BuildPrompt(q),
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return nil, &GenerationError{Kind: GenerationBackendFailure, Err: err}
	}

	g.logger.Debug("Generation response received", zap.String("content", content))

	return ParseSuggestions(content)
}

// Generate produces resolved suggestions for the query. Generation failures yield an
// empty slice; suggestions that cannot be resolved are kept with an empty TrackID.
func (g *Generator) Generate(ctx context.Context, catalog Catalog, q GenerationQuery) []ResolvedTrack {
	suggestions, err := g.Suggest(ctx, q)
	if err != nil {
		g.logger.Warn("Song generation failed, returning no suggestions", zap.Error(err))
		return []ResolvedTrack{}
	}

	resolver := NewResolver(catalog, g.logger.Named("resolver"))

	tracks := make([]ResolvedTrack, 0, len(suggestions))
	for _, s := range suggestions {
		tracks = append(tracks, resolver.ResolveTrack(ctx, s))
	}

	g.logger.Info("Song suggestions generated",
		zap.Int("suggested", len(suggestions)),
		zap.Int("resolved", countFound(tracks)))

	return tracks
}

func countFound(tracks []ResolvedTrack) int {
	n := 0
	for i := range tracks {
		if tracks[i].Found() {
			n++
		}
	}
	return n
}
