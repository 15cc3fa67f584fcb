package user

import (
	"context"
	"errors"
	"time"

	userRepo "kinecare/database/repository/user"
	"kinecare/models"
)

func (s *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.PasswordHash = ""
	u.RefreshTokenHash = ""
	return u, nil
}

func (s *DefaultUserService) List(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error) {
	users, err := s.Repo.GetAll(ctx, role, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
		users[i].RefreshTokenHash = ""
	}
	return users, nil
}

// Practitioners returns the public practitioner directory shown on the
// booking page.
func (s *DefaultUserService) Practitioners(ctx context.Context) ([]models.PractitionerProfile, error) {
	return s.Repo.Practitioners(ctx)
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Specialty != nil {
		u.Specialty = *upd.Specialty
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	if upd.FCMToken != nil {
		u.FCMToken = *upd.FCMToken
	}
	u.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	u.RefreshTokenHash = ""
	return u, nil
}

// Deactivate disables the account without deleting its history.
func (s *DefaultUserService) Deactivate(ctx context.Context, id string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	u.IsActive = false
	u.RefreshTokenHash = ""
	u.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, u)
}
