package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	userRepo "kinecare/database/repository/user"
	"kinecare/models"
	"kinecare/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUserService is the production account service.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

func verifyPasswordStrength(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}

// Register creates a new account. Public signups become patients; an
// admin may create practitioner or admin accounts.
func (s *DefaultUserService) Register(ctx context.Context, req RegisterRequest, createdBy models.Role) (*AuthResponse, error) {
	if !phonePattern.MatchString(req.Phone) {
		return nil, fmt.Errorf("please provide a valid phone number")
	}
	if err := verifyPasswordStrength(req.Password); err != nil {
		return nil, err
	}

	role := models.RolePatient
	if createdBy == models.RoleAdmin && req.Role != "" {
		role = req.Role
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	now := time.Now()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		Specialty:    req.Specialty,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrPhoneExists) {
			return nil, ErrUserExists
		}
		utils.GetLogger().Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	return s.issueTokens(ctx, u)
}

// Login authenticates by phone (or email) and password.
func (s *DefaultUserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var (
		u   *models.User
		err error
	)
	switch {
	case req.Phone != "":
		u, err = s.Repo.GetByPhone(ctx, req.Phone)
	case req.Email != "":
		u, err = s.Repo.GetByEmail(ctx, req.Email)
	default:
		return nil, fmt.Errorf("phone number or email is required")
	}
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if req.FCMToken != "" && req.FCMToken != u.FCMToken {
		u.FCMToken = req.FCMToken
		if err := s.Repo.Update(ctx, u); err != nil {
			utils.GetLogger().Warn("failed to store FCM token", zap.Error(err))
		}
	}

	return s.issueTokens(ctx, u)
}

// Refresh rotates the token pair. The presented refresh token must match
// the stored hash; a reused or revoked token is rejected.
func (s *DefaultUserService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	subject, _, err := utils.ExtractClaimsFromToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.Repo.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive || u.RefreshTokenHash == "" || u.RefreshTokenHash != utils.HashToken(refreshToken) {
		return nil, ErrInvalidToken
	}

	return s.issueTokens(ctx, u)
}

// Logout revokes the refresh token and drops the cached access token.
func (s *DefaultUserService) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.SetRefreshTokenHash(ctx, userID, ""); err != nil && !errors.Is(err, userRepo.ErrNotFound) {
		return err
	}
	if authCache := utils.AuthCacheClient; authCache != nil {
		if err := authCache.Del(ctx, utils.AuthCachePrefix+userID).Err(); err != nil {
			utils.GetLogger().Warn("failed to clear auth cache", zap.Error(err))
		}
	}
	return nil
}

// issueTokens mints an access/refresh pair, stores the refresh hash for
// rotation and caches the access hash for middleware validation.
func (s *DefaultUserService) issueTokens(ctx context.Context, u *models.User) (*AuthResponse, error) {
	access, err := utils.GenerateToken(u.ID, string(u.Role), utils.AccessTokenTTL)
	if err != nil {
		utils.GetLogger().Error("failed to generate access token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	refresh, err := utils.GenerateToken(u.ID, string(u.Role), utils.RefreshTokenTTL)
	if err != nil {
		utils.GetLogger().Error("failed to generate refresh token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if err := s.Repo.SetRefreshTokenHash(ctx, u.ID, utils.HashToken(refresh)); err != nil {
		utils.GetLogger().Error("failed to store refresh token hash", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if authCache := utils.AuthCacheClient; authCache != nil {
		cacheKey := utils.AuthCachePrefix + u.ID
		if err := authCache.Set(ctx, cacheKey, utils.HashToken(access), utils.AccessTokenTTL).Err(); err != nil {
			utils.GetLogger().Warn("failed to cache access token", zap.Error(err))
		}
	}

	u.PasswordHash = ""
	u.RefreshTokenHash = ""
	return &AuthResponse{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
