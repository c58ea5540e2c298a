package user

import (
	"context"
	"time"

	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	// Registration and authentication
	Register(ctx context.Context, in RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, in LoginInput) (*AuthResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *models.User, in ProfileUpdate) (*models.User, error)
	ListCompanions(ctx context.Context, page, limit int) (*CompanionPage, error)

	// Admin
	SetVerified(ctx context.Context, userID string, verified bool) (*models.User, error)
	SetActive(ctx context.Context, userID string, active bool) (*models.User, error)
	ListUsers(ctx context.Context, role models.Role, page, limit int) (*UserPage, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Tokens *utils.JWTIssuer
	Logger *zap.Logger
	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int
	Now        func() time.Time
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultUserService) cost() int {
	if s.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.BcryptCost
}

// AuthUser is the identity subset returned with a token.
type AuthUser struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
}

// AuthResponse contains the user and a freshly issued bearer token.
type AuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

type CompanionPage struct {
	Companions []models.User     `json:"companions"`
	Pagination models.Pagination `json:"pagination"`
}

type UserPage struct {
	Users      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}
