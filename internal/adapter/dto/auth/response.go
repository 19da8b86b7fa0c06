package auth

import "github.com/johnquangdev/meeting-copilot/internal/domain/entities"

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	ExpiresIn    int                  `json:"expires_in"` // seconds
	TokenType    string               `json:"token_type"` // "Bearer"
	User         *entities.PublicUser `json:"user"`
}

// RefreshTokenResponse represents the response after refreshing token
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// LoginURLResponse is returned when the client asks for the URL instead of a redirect
type LoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}
