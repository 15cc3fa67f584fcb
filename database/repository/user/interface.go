package userRepo

import (
	"context"
	"errors"

	"kinecare/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrPhoneExists is returned when registration collides with an existing
// phone number (the primary identifier).
var ErrPhoneExists = errors.New("user with this phone number already exists")

// UserRepository contains all user storage interactions.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error)
	Practitioners(ctx context.Context) ([]models.PractitionerProfile, error)
	Update(ctx context.Context, user *models.User) error
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}
