package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository/memory"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/meeting-copilot/pkg/jwt"
)

type fakeGoogle struct {
	token *oauth2.Token
	info  *oauth.GoogleUserInfo
	err   error
}

func (f *fakeGoogle) GetAuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeGoogle) ExchangeCode(_ context.Context, code string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func (f *fakeGoogle) GetUserInfo(_ context.Context, _ *oauth2.Token) (*oauth.GoogleUserInfo, error) {
	return f.info, nil
}

type fixture struct {
	users    *memory.UserRepository
	sessions *memory.SessionRepository
	google   *fakeGoogle
	svc      *OAuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := cache.NewMemoryStore(clock.New())
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		google: &fakeGoogle{
			token: &oauth2.Token{AccessToken: "g-access", RefreshToken: "g-refresh", Expiry: time.Now().Add(time.Hour)},
			info:  &oauth.GoogleUserInfo{ID: "g-1", Email: "ana@example.com", Name: "Ana", Picture: "https://img/ana.png"},
		},
	}
	jwtManager := jwt.NewManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	f.svc = NewOAuthService(f.users, f.sessions, f.google, oauth.NewStateManager(store), jwtManager, nil)
	return f
}

func (f *fixture) login(t *testing.T) *AuthResponse {
	t.Helper()
	ctx := context.Background()
	url, err := f.svc.GetGoogleAuthURL(ctx)
	require.NoError(t, err)
	resp, err := f.svc.HandleGoogleCallback(ctx, &GoogleCallbackRequest{Code: "code", State: url.State})
	require.NoError(t, err)
	return resp
}

func TestHandleGoogleCallback_CreatesUserWithToken(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.User.HasCalendar)

	user, err := f.users.FindByGoogleID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-access", user.GoogleAccessToken)
	assert.Equal(t, "g-refresh", user.GoogleRefreshToken)
	require.NotNil(t, user.LastLoginAt)
}

func TestHandleGoogleCallback_KeepsRefreshTokenOnRelogin(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)

	// Google omits the refresh token after the first consent
	f.google.token = &oauth2.Token{AccessToken: "g-access-2", Expiry: time.Now().Add(time.Hour)}
	second := f.login(t)
	assert.Equal(t, first.User.ID, second.User.ID)

	user, err := f.users.FindByID(context.Background(), first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-access-2", user.GoogleAccessToken)
	assert.Equal(t, "g-refresh", user.GoogleRefreshToken)
}

func TestHandleGoogleCallback_RejectsBadState(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.HandleGoogleCallback(context.Background(), &GoogleCallbackRequest{Code: "code", State: "forged"})
	assert.ErrorIs(t, err, entities.ErrOAuthStateMismatch)

	url, err := f.svc.GetGoogleAuthURL(context.Background())
	require.NoError(t, err)
	f.google.err = errors.New("invalid_grant")
	_, err = f.svc.HandleGoogleCallback(context.Background(), &GoogleCallbackRequest{Code: "bad", State: url.State})
	assert.ErrorIs(t, err, entities.ErrOAuthCodeInvalid)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)
	ctx := context.Background()

	refreshed, err := f.svc.RefreshAccessToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	user, err := f.svc.ValidateSession(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	require.NoError(t, f.svc.Logout(ctx, resp.RefreshToken))
	_, err = f.svc.RefreshAccessToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)

	_, err = f.svc.RefreshAccessToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, entities.ErrInvalidToken)
	_, err = f.svc.ValidateSession(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, entities.ErrInvalidToken, "refresh tokens are not access tokens")
}
