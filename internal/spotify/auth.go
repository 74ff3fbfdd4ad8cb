// Package spotify adapts the Spotify Web API to the catalog used by the playlist pipeline.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"musicmem/internal/core"
)

// tokenExpiryLeeway refreshes tokens slightly before they run out.
const tokenExpiryLeeway = 30 * time.Second

// Scopes returns the scopes requested at login. Private playlists additionally
// need the private read and modify scopes to be created, viewed and edited.
func Scopes(publicPlaylists bool) []string {
	scopes := []string{
		spotifyauth.ScopePlaylistModifyPublic,
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopeUserReadPrivate,
	}
	if !publicPlaylists {
		scopes = append(scopes,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
		)
	}
	return scopes
}

// oauthProvider is the subset of *spotifyauth.Authenticator used here.
type oauthProvider interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}

type Authenticator struct {
	provider      oauthProvider
	logger        *zap.Logger
	clientOptions []spotify.ClientOption
	now           func() time.Time
}

func NewAuthenticator(config *core.SpotifyConfig, logger *zap.Logger) *Authenticator {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(Scopes(config.PublicPlaylists)...),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	return newAuthenticator(auth, logger)
}

func newAuthenticator(provider oauthProvider, logger *zap.Logger, opts ...spotify.ClientOption) *Authenticator {
	return &Authenticator{
		provider:      provider,
		logger:        logger,
		clientOptions: opts,
		now:           time.Now,
	}
}

// AuthURL returns the consent page URL. The dialog is always shown so a
// shared device can switch accounts.
func (a *Authenticator) AuthURL(state string) string {
	return a.provider.AuthURL(state, spotifyauth.ShowDialog)
}

// Exchange trades an authorization code for tokens and looks up the user.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*core.AuthSession, error) {
	token, err := a.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	session := fromOAuthToken(token)

	user, err := a.Catalog(ctx, session).CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	session.UserID = user.ID
	session.DisplayName = user.DisplayName

	a.logger.Info("OAuth flow completed successfully",
		zap.String("userID", user.ID),
		zap.String("user", user.DisplayName))

	return session, nil
}

// ValidSession returns a session whose access token is usable, refreshing it
// when it has expired. The returned session is a new value if a refresh happened.
func (a *Authenticator) ValidSession(ctx context.Context, session *core.AuthSession) (*core.AuthSession, error) {
	if session == nil || session.AccessToken == "" {
		return nil, &core.AuthError{Kind: core.AuthNoSession}
	}

	if session.Expiry.IsZero() || a.now().Add(tokenExpiryLeeway).Before(session.Expiry) {
		return session, nil
	}

	if session.RefreshToken == "" {
		return nil, &core.AuthError{Kind: core.AuthExpired, Err: fmt.Errorf("no refresh token")}
	}

	token, err := a.provider.RefreshToken(ctx, toOAuthToken(session))
	if err != nil {
		a.logger.Warn("Token refresh failed", zap.String("userID", session.UserID), zap.Error(err))
		return nil, &core.AuthError{Kind: core.AuthExpired, Err: err}
	}

	refreshed := fromOAuthToken(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = session.RefreshToken
	}
	refreshed.UserID = session.UserID
	refreshed.DisplayName = session.DisplayName

	a.logger.Debug("Access token refreshed", zap.String("userID", session.UserID))

	return refreshed, nil
}

// Catalog returns a catalog acting on behalf of the session's user.
func (a *Authenticator) Catalog(ctx context.Context, session *core.AuthSession) core.Catalog {
	httpClient := a.provider.Client(ctx, toOAuthToken(session))
	return NewCatalog(spotify.New(httpClient, a.clientOptions...), a.logger.Named("catalog"))
}

func toOAuthToken(s *core.AuthSession) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

func fromOAuthToken(t *oauth2.Token) *core.AuthSession {
	return &core.AuthSession{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}
