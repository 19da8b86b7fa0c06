package entities

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// User represents a user signed in with Google
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email       string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255);not null"`
	GoogleID    string    `json:"-" gorm:"column:google_id;type:varchar(255);index"`
	AvatarURL   *string   `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`

	// Google tokens, never exposed in JSON
	GoogleAccessToken  string     `json:"-" gorm:"column:google_access_token;type:text"`
	GoogleRefreshToken string     `json:"-" gorm:"column:google_refresh_token;type:text"`
	GoogleTokenExpiry  *time.Time `json:"-" gorm:"column:google_token_expiry;type:timestamp"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewGoogleUser creates a user from a Google profile
func NewGoogleUser(email, name, googleID string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: name,
		GoogleID:    googleID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetGoogleToken stores the OAuth token. An empty refresh token keeps the previous one,
// Google only returns it on first consent.
func (u *User) SetGoogleToken(token *oauth2.Token) {
	if token == nil {
		return
	}
	u.GoogleAccessToken = token.AccessToken
	if token.RefreshToken != "" {
		u.GoogleRefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		u.GoogleTokenExpiry = &expiry
	}
}

// GoogleToken returns the stored token, or nil when the user never connected Google
func (u *User) GoogleToken() *oauth2.Token {
	if u == nil || (u.GoogleAccessToken == "" && u.GoogleRefreshToken == "") {
		return nil
	}
	token := &oauth2.Token{
		AccessToken:  u.GoogleAccessToken,
		RefreshToken: u.GoogleRefreshToken,
		TokenType:    "Bearer",
	}
	if u.GoogleTokenExpiry != nil {
		token.Expiry = *u.GoogleTokenExpiry
	}
	return token
}

// UpdateLastLogin updates the last login timestamp
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.DisplayName == "" {
		return ErrInvalidName
	}
	return nil
}

// PublicUser returns a user with sensitive fields removed
type PublicUser struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	HasCalendar bool      `json:"has_calendar"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToPublic converts User to PublicUser
func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		HasCalendar: u.GoogleToken() != nil,
		CreatedAt:   u.CreatedAt,
	}
}
