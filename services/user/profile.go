package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"companionhub/database/repository"
	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

// ProfileUpdate lists the fields a user may change on their own profile.
// PricePerHour is accepted from companions only.
type ProfileUpdate struct {
	Name         *string             `json:"name" validate:"omitempty,min=1,max=100"`
	Phone        *string             `json:"phone" validate:"omitempty,min=7,max=20"`
	DateOfBirth  *time.Time          `json:"dateOfBirth"`
	Gender       *string             `json:"gender" validate:"omitempty,oneof=male female other"`
	Preferences  *models.Preferences `json:"preferences"`
	PricePerHour *float64            `json:"pricePerHour" validate:"omitempty,gte=0"`
}

func userUpdateLastActive(at time.Time) userRepo.UserUpdate {
	return userRepo.UserUpdate{LastActive: &at}
}

func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		s.Logger.Error("GetProfile: failed to fetch user", zap.String("userId", userID), zap.Error(err))
		return nil, utils.InternalError("failed to fetch user", err)
	}
	if user == nil {
		return nil, utils.NewError(utils.KindNotFound, "User not found")
	}
	return user, nil
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, caller *models.User, in ProfileUpdate) (*models.User, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.PricePerHour != nil && caller.Role != models.RoleCompanion {
		return nil, utils.ValidationError("Invalid updates", utils.FieldError{
			Field: "pricePerHour", Message: "can only be set by companions",
		})
	}

	update := userRepo.UserUpdate{
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Preferences:  in.Preferences,
		PricePerHour: in.PricePerHour,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		update.Name = &name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		update.Phone = &phone
	}
	if update.IsEmpty() {
		return nil, utils.ValidationError("Invalid updates")
	}

	user, err := s.Repo.Update(ctx, caller.ID, update)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewError(utils.KindDuplicateIdentity, "Phone number is already in use")
		}
		s.Logger.Error("UpdateProfile: failed to update user", zap.String("userId", caller.ID), zap.Error(err))
		return nil, utils.InternalError("failed to update profile", err)
	}
	if user == nil {
		return nil, utils.NewError(utils.KindNotFound, "User not found")
	}
	return user, nil
}

// ListCompanions lists bookable companions, best rated first.
func (s *DefaultUserService) ListCompanions(ctx context.Context, page, limit int) (*CompanionPage, error) {
	filter := userRepo.UserFilter{
		Role:         models.RoleCompanion,
		VerifiedOnly: true,
		ActiveOnly:   true,
		SortByRating: true,
	}
	users, pagination, err := s.findUsers(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &CompanionPage{Companions: users, Pagination: pagination}, nil
}

func (s *DefaultUserService) findUsers(ctx context.Context, filter userRepo.UserFilter, page, limit int) ([]models.User, models.Pagination, error) {
	page, limit = models.NormalizePage(page, limit)
	users, err := s.Repo.Find(ctx, filter, page, limit)
	if err != nil {
		s.Logger.Error("failed to list users", zap.Error(err))
		return nil, models.Pagination{}, utils.InternalError("failed to list users", err)
	}
	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		s.Logger.Error("failed to count users", zap.Error(err))
		return nil, models.Pagination{}, utils.InternalError("failed to count users", err)
	}
	return users, models.NewPagination(page, limit, total), nil
}
