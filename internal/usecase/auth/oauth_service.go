package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/meeting-copilot/pkg/jwt"
)

// GoogleAuthenticator is the Google side of the login flow
type GoogleAuthenticator interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUserInfo, error)
}

// OAuthService handles OAuth authentication
type OAuthService struct {
	userRepo     repositories.UserRepository
	sessionRepo  repositories.SessionRepository
	google       GoogleAuthenticator
	stateManager *oauth.StateManager
	jwtManager   *jwt.Manager
	logger       *zap.Logger
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	google GoogleAuthenticator,
	stateManager *oauth.StateManager,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *OAuthService {
	return &OAuthService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		google:       google,
		stateManager: stateManager,
		jwtManager:   jwtManager,
		logger:       logger,
	}
}

// GoogleAuthURLResponse represents the response for auth URL request
type GoogleAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GetGoogleAuthURL generates Google OAuth URL
func (s *OAuthService) GetGoogleAuthURL(ctx context.Context) (*GoogleAuthURLResponse, error) {
	state, err := s.stateManager.GenerateState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	return &GoogleAuthURLResponse{
		URL:   s.google.GetAuthURL(state),
		State: state,
	}, nil
}

// GoogleCallbackRequest represents the callback request
type GoogleCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User         *entities.PublicUser `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	ExpiresIn    int64                `json:"expires_in"`
}

// HandleGoogleCallback exchanges the code, upserts the user with the Google
// tokens and opens a refresh-token session
func (s *OAuthService) HandleGoogleCallback(ctx context.Context, req *GoogleCallbackRequest) (*AuthResponse, error) {
	if !s.stateManager.ValidateState(ctx, req.State) {
		return nil, entities.ErrOAuthStateMismatch
	}

	token, err := s.google.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrOAuthCodeInvalid, err)
	}

	googleUser, err := s.google.GetUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	user, err := s.upsertUser(ctx, googleUser, token)
	if err != nil {
		return nil, err
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("🔐 User signed in",
			zap.String("user_id", user.ID.String()),
			zap.Bool("calendar_connected", user.GoogleToken() != nil),
		)
	}
	return resp, nil
}

func (s *OAuthService) upsertUser(ctx context.Context, info *oauth.GoogleUserInfo, token *oauth2.Token) (*entities.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, info.ID)
	if errors.Is(err, entities.ErrUserNotFound) {
		// an account created before Google was linked
		user, err = s.userRepo.FindByEmail(ctx, info.Email)
	}

	switch {
	case errors.Is(err, entities.ErrUserNotFound):
		user = entities.NewGoogleUser(info.Email, info.Name, info.ID)
		if info.Picture != "" {
			user.AvatarURL = &info.Picture
		}
		user.SetGoogleToken(token)
		user.UpdateLastLogin()
		if err := user.Validate(); err != nil {
			return nil, err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil

	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.GoogleID = info.ID
	if info.Name != "" {
		user.DisplayName = info.Name
	}
	if info.Picture != "" {
		user.AvatarURL = &info.Picture
	}
	user.SetGoogleToken(token)
	user.UpdateLastLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *OAuthService) openSession(ctx context.Context, user *entities.User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	hash, err := jwt.HashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	session := entities.NewSession(user.ID, hash, time.Now().Add(s.jwtManager.GetRefreshExpiry()))
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		User:         user.ToPublic(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}

// RefreshAccessToken issues a new access token for a live session
func (s *OAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}

	session, err := s.findSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !session.IsValid() || session.UserID != userID {
		return nil, entities.ErrSessionExpired
	}

	// non-fatal
	_ = s.sessionRepo.UpdateLastUsed(ctx, session.ID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        user.ToPublic(),
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}

// ValidateSession validates an access token and loads its user
func (s *OAuthService) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads a user by id
func (s *OAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// Logout revokes the session of a refresh token
func (s *OAuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.findSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.sessionRepo.Revoke(ctx, session.ID)
}

// LogoutAll revokes all sessions for a user
func (s *OAuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.RevokeAllByUserID(ctx, userID)
}

func (s *OAuthService) findSession(ctx context.Context, refreshToken string) (*entities.Session, error) {
	hash, err := jwt.HashToken(refreshToken)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}
	session, err := s.sessionRepo.FindByTokenHash(ctx, hash)
	if err != nil {
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}
