package core

import (
	"context"
	"time"
)

const (
	// UnknownSong replaces a suggestion without a song title
	UnknownSong = "Unknown Song"
	// UnknownArtist replaces a suggestion without an artist
	UnknownArtist = "Unknown Artist"
)

// PreferenceSet holds the listening constraints submitted through the preference form.
type PreferenceSet struct {
	SeniorName string `json:"senior_name"`
	Mood       string `json:"mood"`
	Age        int    `json:"age"`
	Genres     string `json:"genres"`
	Artists    string `json:"artists"`
	Language   string `json:"language"`
}

// YearWindow is the release-year range derived from a listener's age.
type YearWindow struct {
	Start int
	End   int
}

type SuggestedTrack struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

// ResolvedTrack is a suggestion after catalog resolution. An empty TrackID means no match.
type ResolvedTrack struct {
	SuggestedTrack
	TrackID string `json:"track_id,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Found reports whether the suggestion was matched to a catalog track.
func (t ResolvedTrack) Found() bool {
	return t.TrackID != ""
}

type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	PreviewURL string
	URL        string
	Duration   time.Duration
}

type PlaylistTrack struct {
	Track
	AddedAt time.Time
}

type Playlist struct {
	ID          string
	Name        string
	Description string
	URL         string
	Public      bool
	Tracks      []PlaylistTrack
}

// TrackIDs returns the playlist's track ids in playlist order.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, 0, len(p.Tracks))
	for i := range p.Tracks {
		ids = append(ids, p.Tracks[i].ID)
	}
	return ids
}

type User struct {
	ID          string
	DisplayName string
}

// AuthSession is the OAuth state of one signed-in browser session.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
}

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleAssistant ChatRole = "assistant"
	RoleUser      ChatRole = "user"
)

type ChatMessage struct {
	Role    ChatRole
	Content string
}

type CompletionRequest struct {
	Messages  []ChatMessage
	MaxTokens int
}

// TextGenerator is a text completion backend.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Catalog is the music catalog as seen by one authenticated user.
type Catalog interface {
	CurrentUser(ctx context.Context) (*User, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	RemoveTrack(ctx context.Context, playlistID, trackID string) error
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// SubmissionLedger remembers playlist submissions so repeats can be detected.
type SubmissionLedger interface {
	Has(key string) bool
	Add(key string)
}

// Request carries everything one web request needs to run the pipeline.
type Request struct {
	Catalog     Catalog
	UserID      string
	DisplayName string
	Preferences PreferenceSet
	Now         time.Time
}
