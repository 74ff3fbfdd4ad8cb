package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"musicmem/internal/core"
	"musicmem/internal/session"
)

type pageData struct {
	User       string
	Error      string
	Notice     string
	PlaylistID string
	BackURL    string
	Form       core.PreferenceInput
	Tracks     []core.ResolvedTrack
	Playlist   *core.Playlist
}

func (s *Server) t(key string, args ...interface{}) string {
	return s.deps.Localizer.T(key, args...)
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data *pageData) {
	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, s.t("error.generic"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderMessage(w http.ResponseWriter, status int, user, message, backURL string) {
	s.render(w, status, pageMessage, &pageData{User: user, Error: message, BackURL: backURL})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := s.deps.Sessions.Save(r.Context(), w, sess); err != nil {
		s.logger.Error("Failed to save session", zap.String("sessionID", sess.ID), zap.Error(err))
		s.deps.Metrics.RecordError("session", "save")
		s.renderMessage(w, http.StatusInternalServerError, "", s.t("error.generic"), "/")
		return false
	}
	return true
}

// authorize loads the session and builds a pipeline request for its user. When it
// returns false a response has already been written.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (*session.Session, *core.Request, bool) {
	ctx := r.Context()

	sess, err := s.deps.Sessions.Load(r)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		s.deps.Metrics.RecordError("session", "load")
		s.renderMessage(w, http.StatusInternalServerError, "", s.t("error.generic"), "/")
		return nil, nil, false
	}

	auth, err := s.deps.Auth.ValidSession(ctx, sess.Auth)
	if err != nil {
		s.reauthenticate(w, r, sess, err)
		return nil, nil, false
	}

	if auth != sess.Auth {
		sess.Auth = auth
		if !s.save(w, r, sess) {
			return nil, nil, false
		}
	}

	req := &core.Request{
		Catalog:     s.deps.Auth.Catalog(ctx, auth),
		UserID:      auth.UserID,
		DisplayName: auth.DisplayName,
		Now:         s.now(),
	}
	if sess.Preferences != nil {
		req.Preferences = *sess.Preferences
	}

	return sess, req, true
}

// reauthenticate drops stale credentials and sends the browser back through login.
func (s *Server) reauthenticate(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if sess.Auth != nil {
		s.logger.Info("Session credentials no longer valid", zap.String("userID", sess.Auth.UserID), zap.Error(err))
		s.deps.Metrics.RecordError("auth", "expired")
		sess.Auth = nil
		if saveErr := s.deps.Sessions.Save(r.Context(), w, sess); saveErr != nil {
			s.logger.Warn("Failed to clear session credentials", zap.Error(saveErr))
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// fail reports a pipeline error to the user with the most specific message available.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, sess *session.Session, component string, err error, fallbackKey, backURL string) {
	var authErr *core.AuthError
	if errors.As(err, &authErr) {
		s.reauthenticate(w, r, sess, err)
		return
	}

	status, key, errType := http.StatusBadGateway, fallbackKey, "catalog"

	var writeErr *core.WriteError
	if errors.As(err, &writeErr) {
		errType = writeErr.Kind.String()
		switch writeErr.Kind {
		case core.WriteEmptySelection:
			status, key = http.StatusBadRequest, "error.playlist.empty_selection"
			if errors.Is(err, core.ErrNoValidTracks) {
				key = "error.playlist.no_valid_tracks"
			}
		case core.WriteDuplicateSubmission:
			status, key = http.StatusConflict, "error.playlist.duplicate"
		case core.WritePartialFailure:
			key = "error.playlist.partial"
		}
	}

	s.logger.Warn("Request failed",
		zap.String("component", component),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	s.deps.Metrics.RecordError(component, errType)

	s.renderMessage(w, status, displayName(sess), s.t(key), backURL)
}

func displayName(sess *session.Session) string {
	if sess == nil || !sess.Authenticated() {
		return ""
	}
	return sess.Auth.DisplayName
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Sessions.Load(r)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		s.renderMessage(w, http.StatusInternalServerError, "", s.t("error.generic"), "/")
		return
	}

	s.render(w, http.StatusOK, pageHome, &pageData{
		User:       displayName(sess),
		PlaylistID: sess.PlaylistID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Sessions.Load(r)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		s.renderMessage(w, http.StatusInternalServerError, "", s.t("error.generic"), "/")
		return
	}

	sess.OAuthState = uuid.NewString()
	if !s.save(w, r, sess) {
		return
	}

	http.Redirect(w, r, s.deps.Auth.AuthURL(sess.OAuthState), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	sess, err := s.deps.Sessions.Load(r)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		s.renderMessage(w, http.StatusInternalServerError, "", s.t("error.generic"), "/")
		return
	}

	if reason := query.Get("error"); reason != "" {
		s.logger.Info("OAuth login denied", zap.String("reason", reason))
		s.deps.Metrics.LoginsTotal.WithLabelValues("denied").Inc()
		s.renderMessage(w, http.StatusBadRequest, "", s.t("error.auth.denied"), "/")
		return
	}

	if sess.OAuthState == "" || query.Get("state") != sess.OAuthState {
		s.logger.Warn("OAuth state mismatch")
		s.deps.Metrics.LoginsTotal.WithLabelValues("state_mismatch").Inc()
		s.renderMessage(w, http.StatusBadRequest, "", s.t("error.auth.state_mismatch"), "/")
		return
	}

	auth, err := s.deps.Auth.Exchange(ctx, query.Get("code"))
	if err != nil {
		s.logger.Error("OAuth code exchange failed", zap.Error(err))
		s.deps.Metrics.LoginsTotal.WithLabelValues("failed").Inc()
		s.renderMessage(w, http.StatusBadGateway, "", s.t("error.generic"), "/")
		return
	}

	if err := s.deps.Sessions.Rotate(ctx, sess); err != nil {
		s.logger.Warn("Failed to rotate session", zap.Error(err))
	}
	sess.Auth = auth
	sess.OAuthState = ""
	if !s.save(w, r, sess) {
		return
	}

	s.deps.Metrics.LoginsTotal.WithLabelValues("ok").Inc()
	http.Redirect(w, r, "/preferences", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Sessions.Load(r)
	if err == nil {
		err = s.deps.Sessions.Destroy(r.Context(), w, sess)
	}
	if err != nil {
		s.logger.Warn("Failed to destroy session", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func preferenceForm(p *core.PreferenceSet) core.PreferenceInput {
	if p == nil {
		return core.PreferenceInput{}
	}
	return core.PreferenceInput{
		SeniorName: p.SeniorName,
		Mood:       p.Mood,
		Age:        strconv.Itoa(p.Age),
		Genres:     p.Genres,
		Artists:    p.Artists,
		Language:   p.Language,
	}
}

func (s *Server) handlePreferencesForm(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.authorize(w, r)
	if !ok {
		return
	}

	s.render(w, http.StatusOK, pagePreferences, &pageData{
		User: displayName(sess),
		Form: preferenceForm(sess.Preferences),
	})
}

func (s *Server) handlePreferencesSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderMessage(w, http.StatusBadRequest, displayName(sess), s.t("error.generic"), "/preferences")
		return
	}

	input := core.PreferenceInput{
		SeniorName: r.PostFormValue("senior_name"),
		Mood:       r.PostFormValue("mood"),
		Age:        r.PostFormValue("age"),
		Genres:     r.PostFormValue("genres"),
		Artists:    r.PostFormValue("artists"),
		Language:   r.PostFormValue("language"),
	}

	preferences, err := core.NewPreferenceSet(input)
	if err != nil {
		s.render(w, http.StatusBadRequest, pagePreferences, &pageData{
			User:  displayName(sess),
			Error: s.preferenceMessage(err),
			Form:  input,
		})
		return
	}

	sess.Preferences = &preferences
	if !s.save(w, r, sess) {
		return
	}

	http.Redirect(w, r, "/recommendations", http.StatusSeeOther)
}

func (s *Server) preferenceMessage(err error) string {
	var prefErr *core.PreferenceError
	if !errors.As(err, &prefErr) {
		return s.t("error.generic")
	}
	if prefErr.Field == "age" && prefErr.Reason != "required" {
		return s.t("error.preferences.age")
	}
	return s.t("error.preferences.required", s.t("prompt."+prefErr.Field))
}

// allow applies the per-user request throttle and renders a 429 page when it trips.
func (s *Server) allow(w http.ResponseWriter, sess *session.Session, operation, back string) bool {
	if s.deps.Limiter == nil || s.deps.Limiter.Allow(operation, sess.Auth.UserID) {
		return true
	}

	s.logger.Warn("Request throttled",
		zap.String("operation", operation),
		zap.String("userID", sess.Auth.UserID))
	s.deps.Metrics.RecordError("http", "rate_limited")
	s.renderMessage(w, http.StatusTooManyRequests, displayName(sess), s.t("error.rate_limited"), back)
	return false
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	sess, req, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if sess.Preferences == nil {
		http.Redirect(w, r, "/preferences", http.StatusFound)
		return
	}

	if !s.allow(w, sess, "recommend", "/preferences") {
		return
	}

	start := s.now()
	tracks := s.deps.Pipeline.Recommend(r.Context(), req)
	s.deps.Metrics.RecordProcessingTime("recommend", s.now().Sub(start))
	s.deps.Metrics.RecordRecommendations(tracks)

	data := &pageData{User: displayName(sess), Tracks: tracks}
	if len(tracks) == 0 {
		data.Error = s.t("error.generation.empty")
	}

	s.render(w, http.StatusOK, pageRecommendations, data)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	sess, req, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if sess.Preferences == nil {
		s.renderMessage(w, http.StatusBadRequest, displayName(sess), s.t("error.preferences.missing"), "/preferences")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderMessage(w, http.StatusBadRequest, displayName(sess), s.t("error.generic"), "/recommendations")
		return
	}

	if !s.allow(w, sess, "submit", "/recommendations") {
		return
	}

	start := s.now()
	playlist, err := s.deps.Pipeline.Submit(r.Context(), req, r.PostFormValue("playlist_name"), r.PostForm["track_id"])
	s.deps.Metrics.RecordProcessingTime("submit", s.now().Sub(start))
	if err != nil {
		s.deps.Metrics.PlaylistsTotal.WithLabelValues("failed").Inc()
		s.fail(w, r, sess, "writer", err, "error.generic", "/recommendations")
		return
	}
	s.deps.Metrics.PlaylistsTotal.WithLabelValues("created").Inc()

	sess.PlaylistID = playlist.ID
	if !s.save(w, r, sess) {
		return
	}

	http.Redirect(w, r, "/playlists/"+url.PathEscape(playlist.ID)+"?created=1", http.StatusSeeOther)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	sess, req, ok := s.authorize(w, r)
	if !ok {
		return
	}

	playlist, err := s.deps.Pipeline.Playlist(r.Context(), req, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, sess, "maintenance", err, "error.playlist.not_found", "/")
		return
	}

	data := &pageData{User: displayName(sess), Playlist: playlist}
	if r.URL.Query().Get("created") != "" {
		data.Notice = s.t("success.playlist_created", playlist.Name)
	}

	s.render(w, http.StatusOK, pagePlaylist, data)
}

func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	sess, req, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderMessage(w, http.StatusBadRequest, displayName(sess), s.t("error.generic"), r.URL.Path)
		return
	}

	playlistID := r.PathValue("id")
	playlist, err := s.deps.Pipeline.RemoveTrack(r.Context(), req, playlistID, r.PostFormValue("track_id"))
	if err != nil {
		s.fail(w, r, sess, "maintenance", err, "error.playlist.remove_failed", "/playlists/"+url.PathEscape(playlistID))
		return
	}
	s.deps.Metrics.TrackRemovalsTotal.Inc()

	s.render(w, http.StatusOK, pagePlaylist, &pageData{
		User:     displayName(sess),
		Notice:   s.t("success.track_removed"),
		Playlist: playlist,
	})
}
