package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestPipeline(llm TextGenerator) *Pipeline {
	return NewPipeline(DefaultConfig(), llm, nil, zap.NewNop())
}

func TestPipeline_Recommend(t *testing.T) {
	llm := &mockTextGenerator{response: `[{"song": "Hurt", "artist": "Johnny Cash"}]`}
	catalog := newMockCatalog()
	catalog.searchResults[SearchQuery("Hurt", "Johnny Cash")] = []Track{{ID: "t1"}}
	catalog.tracks["t1"] = &Track{ID: "t1"}

	req := &Request{
		Catalog:     catalog,
		Preferences: PreferenceSet{Age: 40, Genres: "country", Mood: "sad"},
		Now:         time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	tracks := newTestPipeline(llm).Recommend(context.Background(), req)
	if len(tracks) != 1 || tracks[0].TrackID != "t1" {
		t.Fatalf("Unexpected recommendations %+v", tracks)
	}

	user := llm.requests[0].Messages[2].Content
	for _, want := range []string{"1997", "2017", "country", "sad"} {
		if !strings.Contains(user, want) {
			t.Errorf("Prompt missing %q: %s", want, user)
		}
	}
}

func TestPipeline_Submit(t *testing.T) {
	catalog := newMockCatalog()
	catalog.tracks["t1"] = &Track{ID: "t1"}
	catalog.tracks["t3"] = &Track{ID: "t3"}

	req := &Request{Catalog: catalog, UserID: "user1", DisplayName: "Caretaker", Preferences: testPreferences()}

	playlist, err := newTestPipeline(&mockTextGenerator{}).Submit(context.Background(), req, "Sunday",
		[]string{"t3", "missing", "", "t1"})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if !reflect.DeepEqual(playlist.TrackIDs(), []string{"t3", "t1"}) {
		t.Errorf("Expected unknown ids dropped in order, got %v", playlist.TrackIDs())
	}
	if catalog.createdName != "mm_Rosa_Sunday" {
		t.Errorf("Unexpected playlist name %q", catalog.createdName)
	}
}

func TestPipeline_SubmitOwnerFallback(t *testing.T) {
	catalog := newMockCatalog()
	catalog.tracks["t1"] = &Track{ID: "t1"}
	req := &Request{Catalog: catalog, UserID: "user1", DisplayName: "Caretaker"}

	if _, err := newTestPipeline(&mockTextGenerator{}).Submit(context.Background(), req, "", []string{"t1"}); err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if catalog.createdName != "mm_Caretaker_My Playlist" {
		t.Errorf("Unexpected playlist name %q", catalog.createdName)
	}
}

func TestPipeline_SubmitEmpty(t *testing.T) {
	catalog := newMockCatalog()
	req := &Request{Catalog: catalog, UserID: "user1"}
	pipeline := newTestPipeline(&mockTextGenerator{})

	_, err := pipeline.Submit(context.Background(), req, "Sunday", nil)
	if !IsWriteError(err, WriteEmptySelection) || errors.Is(err, ErrNoValidTracks) {
		t.Fatalf("Expected plain empty selection, got %v", err)
	}
	if len(catalog.calls) != 0 {
		t.Errorf("No catalog calls expected, got %v", catalog.calls)
	}

	_, err = pipeline.Submit(context.Background(), req, "Sunday", []string{"gone"})
	if !errors.Is(err, ErrNoValidTracks) {
		t.Fatalf("Expected ErrNoValidTracks, got %v", err)
	}
	if !reflect.DeepEqual(catalog.calls, []string{"GetTrack"}) {
		t.Errorf("Only validation calls expected, got %v", catalog.calls)
	}
}

func TestPipeline_SubmitExpiredCredentials(t *testing.T) {
	catalog := newMockCatalog()
	catalog.trackErr = &AuthError{Kind: AuthExpired, Err: errors.New("401")}
	req := &Request{Catalog: catalog, UserID: "user1"}

	_, err := newTestPipeline(&mockTextGenerator{}).Submit(context.Background(), req, "Sunday", []string{"t1", "t2"})
	if !IsAuthError(err, AuthExpired) {
		t.Fatalf("Expected expired credentials to surface, got %v", err)
	}
	if !reflect.DeepEqual(catalog.calls, []string{"GetTrack"}) {
		t.Errorf("Validation should stop at the first auth failure, got %v", catalog.calls)
	}
}

func TestPipeline_RemoveTrack(t *testing.T) {
	catalog := newMockCatalog()
	catalog.playlist = &Playlist{ID: "p1", Tracks: []PlaylistTrack{{Track: Track{ID: "t2"}}}}
	req := &Request{Catalog: catalog}

	playlist, err := newTestPipeline(&mockTextGenerator{}).RemoveTrack(context.Background(), req, "p1", "t1")
	if err != nil {
		t.Fatalf("RemoveTrack() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(catalog.calls, []string{"RemoveTrack", "GetPlaylist"}) {
		t.Errorf("Expected remove then re-fetch, got %v", catalog.calls)
	}
	if !reflect.DeepEqual(playlist.TrackIDs(), []string{"t2"}) {
		t.Errorf("Unexpected playlist tracks %v", playlist.TrackIDs())
	}

	catalog.removeErr = errors.New("404")
	if _, err := newTestPipeline(&mockTextGenerator{}).RemoveTrack(context.Background(), req, "p1", "t1"); err == nil {
		t.Error("Expected remove failure to propagate")
	}
	if _, err := newTestPipeline(&mockTextGenerator{}).RemoveTrack(context.Background(), req, "p1", ""); err == nil {
		t.Error("Expected empty track id to be rejected")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.LLM.MaxTokens != DefaultMaxOutputTokens {
		t.Errorf("Expected default max tokens %d, got %d", DefaultMaxOutputTokens, config.LLM.MaxTokens)
	}
	if !config.Spotify.PublicPlaylists {
		t.Error("Playlists should be public by default")
	}
	if !config.App.CompensateFailedWrites {
		t.Error("Compensating deletes should be on by default")
	}
	if config.App.RequestsPerMinute != 0 {
		t.Errorf("Request throttling should be off by default, got %d per minute", config.App.RequestsPerMinute)
	}
	if config.App.RejectDuplicateSubmissions {
		t.Error("Duplicate submissions should be allowed by default")
	}
	if DefaultServerPort <= 0 || DefaultServerPort > 65535 {
		t.Error("DefaultServerPort should be a valid port number")
	}
}
