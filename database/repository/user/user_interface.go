package userRepo

import (
	"context"
	"time"

	"companionhub/models"
)

// UserRepository defines methods for identity data access. Lookups return
// (nil, nil) when no document matches.
type UserRepository interface {
	// GetByID retrieves a user by ID without the password hash.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmailWithPassword retrieves a user by email including the password hash.
	GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	// GetByEmailOrPhone finds any user holding the email or (non-empty) phone.
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	// GetSummaries resolves display summaries for the given IDs. Missing IDs are omitted.
	GetSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error)
	// Create inserts a new user. Returns repository.ErrDuplicate on email/phone clash.
	Create(ctx context.Context, user *models.User) error
	// Save replaces the stored user document.
	Save(ctx context.Context, user *models.User) error
	// Update applies the non-nil fields and returns the updated user.
	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	// AddRating folds score into the running rating average atomically.
	AddRating(ctx context.Context, id string, score int) error
	// Find lists users matching filter.
	Find(ctx context.Context, filter UserFilter, page, limit int) ([]models.User, error)
	// Count counts users matching filter.
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	Phone        *string
	DateOfBirth  *time.Time
	Gender       *string
	Preferences  *models.Preferences
	PricePerHour *float64
	IsVerified   *bool
	IsActive     *bool
	LastActive   *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.DateOfBirth == nil && u.Gender == nil &&
		u.Preferences == nil && u.PricePerHour == nil && u.IsVerified == nil &&
		u.IsActive == nil && u.LastActive == nil
}

// UserFilter narrows Find and Count.
type UserFilter struct {
	Role         models.Role
	VerifiedOnly bool
	ActiveOnly   bool
	// SortByRating orders by rating average, then newest; otherwise newest first.
	SortByRating bool
}
