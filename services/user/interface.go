package user

import (
	"context"
	"errors"

	"kinecare/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrUserExists         = errors.New("a user with this phone number already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// RegisterRequest is a new account signup.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	// Role is honored only when an admin creates the account; public
	// signups are always patients.
	Role      models.Role `json:"role"`
	Specialty string      `json:"specialty"`
}

// LoginRequest authenticates by phone number (or email) and password.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcmToken"`
}

// AuthResponse carries the issued token pair and the account snapshot.
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ProfileUpdate is a partial self-service profile edit.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Specialty *string `json:"specialty"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	FCMToken  *string `json:"fcmToken"`
}

// UserService manages accounts and authentication.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest, createdBy models.Role) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error

	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error)
	Practitioners(ctx context.Context) ([]models.PractitionerProfile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error)
	Deactivate(ctx context.Context, id string) error
}

var _ UserService = (*DefaultUserService)(nil)
