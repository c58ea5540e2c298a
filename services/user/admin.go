package user

import (
	"context"

	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

// SetVerified marks a user (normally a companion) verified or not.
func (s *DefaultUserService) SetVerified(ctx context.Context, userID string, verified bool) (*models.User, error) {
	return s.adminUpdate(ctx, userID, userRepo.UserUpdate{IsVerified: &verified})
}

// SetActive activates or deactivates an account. Deactivated users can no
// longer authenticate and are not bookable.
func (s *DefaultUserService) SetActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	return s.adminUpdate(ctx, userID, userRepo.UserUpdate{IsActive: &active})
}

func (s *DefaultUserService) adminUpdate(ctx context.Context, userID string, update userRepo.UserUpdate) (*models.User, error) {
	user, err := s.Repo.Update(ctx, userID, update)
	if err != nil {
		s.Logger.Error("admin update failed", zap.String("userId", userID), zap.Error(err))
		return nil, utils.InternalError("failed to update user", err)
	}
	if user == nil {
		return nil, utils.NewError(utils.KindNotFound, "User not found")
	}
	s.Logger.Info("user updated by admin", zap.String("userId", userID))
	return user, nil
}

// ListUsers lists all users, optionally of one role, newest first.
func (s *DefaultUserService) ListUsers(ctx context.Context, role models.Role, page, limit int) (*UserPage, error) {
	if role != "" && !role.Valid() {
		return nil, utils.ValidationError("invalid role", utils.FieldError{Field: "role", Message: "must be one of: user companion admin"})
	}
	users, pagination, err := s.findUsers(ctx, userRepo.UserFilter{Role: role}, page, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: pagination}, nil
}
