package core

import (
	"context"
	"fmt"
)

// Mock implementations for testing

type mockTextGenerator struct {
	response string
	err      error
	requests []CompletionRequest
}

func (m *mockTextGenerator) Complete(_ context.Context, req CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

type mockCatalog struct {
	searchResults map[string][]Track
	searchErr     error
	tracks        map[string]*Track
	trackErr      error
	createErr     error
	addErr        error
	deleteErr     error
	removeErr     error

	calls            []string
	searches         []string
	createdName      string
	createdDesc      string
	createdPublic    bool
	addedTracks      []string
	deletedPlaylists []string
	removed          []string
	playlist         *Playlist
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		searchResults: make(map[string][]Track),
		tracks:        make(map[string]*Track),
	}
}

func (m *mockCatalog) CurrentUser(_ context.Context) (*User, error) {
	m.calls = append(m.calls, "CurrentUser")
	return &User{ID: "user1", DisplayName: "User One"}, nil
}

func (m *mockCatalog) SearchTracks(_ context.Context, query string, _ int) ([]Track, error) {
	m.calls = append(m.calls, "SearchTracks")
	m.searches = append(m.searches, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults[query], nil
}

func (m *mockCatalog) GetTrack(_ context.Context, trackID string) (*Track, error) {
	m.calls = append(m.calls, "GetTrack")
	if m.trackErr != nil {
		return nil, m.trackErr
	}
	if track, exists := m.tracks[trackID]; exists {
		return track, nil
	}
	return nil, fmt.Errorf("track %s not found", trackID)
}

func (m *mockCatalog) CreatePlaylist(_ context.Context, _, name, description string, public bool) (*Playlist, error) {
	m.calls = append(m.calls, "CreatePlaylist")
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdName = name
	m.createdDesc = description
	m.createdPublic = public
	return &Playlist{ID: "playlist1", Name: name, Description: description}, nil
}

func (m *mockCatalog) AddTracks(_ context.Context, _ string, trackIDs []string) error {
	m.calls = append(m.calls, "AddTracks")
	if m.addErr != nil {
		return m.addErr
	}
	m.addedTracks = append(m.addedTracks, trackIDs...)
	return nil
}

func (m *mockCatalog) GetPlaylist(_ context.Context, playlistID string) (*Playlist, error) {
	m.calls = append(m.calls, "GetPlaylist")
	if m.playlist != nil {
		return m.playlist, nil
	}
	return &Playlist{ID: playlistID}, nil
}

func (m *mockCatalog) RemoveTrack(_ context.Context, _, trackID string) error {
	m.calls = append(m.calls, "RemoveTrack")
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, trackID)
	return nil
}

func (m *mockCatalog) DeletePlaylist(_ context.Context, playlistID string) error {
	m.calls = append(m.calls, "DeletePlaylist")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedPlaylists = append(m.deletedPlaylists, playlistID)
	return nil
}

type mockLedger struct {
	keys map[string]bool
}

func (m *mockLedger) Has(key string) bool {
	return m.keys[key]
}

func (m *mockLedger) Add(key string) {
	m.keys[key] = true
}
