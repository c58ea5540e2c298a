package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"companionhub/database/repository"
	"companionhub/models"
	"companionhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name        string      `json:"name" validate:"required,max=100"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=6,max=72"`
	Phone       string      `json:"phone" validate:"omitempty,min=7,max=20"`
	DateOfBirth *time.Time  `json:"dateOfBirth"`
	Gender      string      `json:"gender" validate:"omitempty,oneof=male female other"`
	Role        models.Role `json:"role" validate:"omitempty,oneof=user companion"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a seeker or companion account and issues a token.
// Administrators cannot self-register.
func (s *DefaultUserService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleSeeker
	}

	existing, err := s.Repo.GetByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		s.Logger.Error("Register: duplicate check failed", zap.Error(err))
		return nil, utils.InternalError("registration failed", err)
	}
	if existing != nil {
		return nil, utils.NewError(utils.KindDuplicateIdentity, "User with this email or phone already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		s.Logger.Error("Register: failed to hash password", zap.Error(err))
		return nil, utils.InternalError("registration failed", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Role:         in.Role,
		IsActive:     true,
		LastActive:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewError(utils.KindDuplicateIdentity, "User with this email or phone already exists")
		}
		s.Logger.Error("Register: failed to create user", zap.Error(err))
		return nil, utils.InternalError("registration failed", err)
	}
	s.Logger.Info("user registered", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return s.authResponse(user)
}

// Login checks the password, stamps lastActive and issues a token.
func (s *DefaultUserService) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return nil, utils.ValidationError("Please provide email and password")
	}

	user, err := s.Repo.GetByEmailWithPassword(ctx, in.Email)
	if err != nil {
		s.Logger.Error("Login: failed to fetch user", zap.Error(err))
		return nil, utils.InternalError("authentication failed", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, utils.NewError(utils.KindInvalidCredential, "Invalid credentials")
	}
	if !user.IsActive {
		return nil, utils.NewError(utils.KindInvalidCredential, "Account is deactivated")
	}

	now := s.now()
	if _, err := s.Repo.Update(ctx, user.ID, userUpdateLastActive(now)); err != nil {
		s.Logger.Warn("Login: failed to update lastActive", zap.String("userId", user.ID), zap.Error(err))
	}
	return s.authResponse(user)
}

func (s *DefaultUserService) authResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		s.Logger.Error("failed to issue token", zap.String("userId", user.ID), zap.Error(err))
		return nil, utils.InternalError("failed to issue token", err)
	}
	return &AuthResponse{
		User: AuthUser{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		},
		Token: token,
	}, nil
}
