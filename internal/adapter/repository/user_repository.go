package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByGoogleID finds a user by Google account id
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateGoogleToken stores the Google token columns only
func (r *UserRepository) UpdateGoogleToken(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"google_access_token":  user.GoogleAccessToken,
			"google_refresh_token": user.GoogleRefreshToken,
			"google_token_expiry":  user.GoogleTokenExpiry,
		}).Error; err != nil {
		return fmt.Errorf("failed to update google token: %w", err)
	}
	return nil
}
