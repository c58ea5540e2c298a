// Package memory holds process-local implementations of the repository
// interfaces. They back the test suites and the "memory://" database URL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"companionhub/database/repository"
	userRepo "companionhub/database/repository/user"
	"companionhub/models"
)

// UserRepo is an in-memory userRepo.UserRepository.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]models.User)}
}

var _ userRepo.UserRepository = (*UserRepo)(nil)

func withoutHash(u models.User) *models.User {
	u.PasswordHash = ""
	return &u
}

// clashes reports whether another user already holds email or phone.
func (r *UserRepo) clashes(id, email, phone string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Email == email || (phone != "" && u.Phone == phone) {
			return true
		}
	}
	return false
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return withoutHash(u), nil
}

func (r *UserRepo) GetByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByEmailOrPhone(_ context.Context, email, phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email || (phone != "" && u.Phone == phone) {
			return withoutHash(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetSummaries(_ context.Context, ids []string) (map[string]*models.UserSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists || r.clashes(user.ID, user.Email, user.Phone) {
		return repository.ErrDuplicate
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrConflict
	}
	if r.clashes(user.ID, user.Email, user.Phone) {
		return repository.ErrDuplicate
	}
	next := *user
	if next.PasswordHash == "" {
		next.PasswordHash = stored.PasswordHash
	}
	next.UpdatedAt = time.Now()
	r.users[user.ID] = next
	return nil
}

func (r *UserRepo) Update(_ context.Context, id string, update userRepo.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		if *update.Phone != "" && r.clashes(id, u.Email, *update.Phone) {
			return nil, repository.ErrDuplicate
		}
		u.Phone = *update.Phone
	}
	if update.DateOfBirth != nil {
		dob := *update.DateOfBirth
		u.DateOfBirth = &dob
	}
	if update.Gender != nil {
		u.Gender = *update.Gender
	}
	if update.Preferences != nil {
		u.Preferences = *update.Preferences
	}
	if update.PricePerHour != nil {
		price := *update.PricePerHour
		u.PricePerHour = &price
	}
	if update.IsVerified != nil {
		u.IsVerified = *update.IsVerified
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.LastActive != nil {
		u.LastActive = *update.LastActive
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return withoutHash(u), nil
}

func (r *UserRepo) AddRating(_ context.Context, id string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrConflict
	}
	total := u.Ratings.Average*float64(u.Ratings.Count) + float64(score)
	u.Ratings.Count++
	u.Ratings.Average = total / float64(u.Ratings.Count)
	r.users[id] = u
	return nil
}

func (r *UserRepo) matching(filter userRepo.UserFilter) []models.User {
	var out []models.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.VerifiedOnly && !u.IsVerified {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (r *UserRepo) Find(_ context.Context, filter userRepo.UserFilter, page, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := r.matching(filter)
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if filter.SortByRating && a.Ratings.Average != b.Ratings.Average {
			return a.Ratings.Average > b.Ratings.Average
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	out := []models.User{}
	for _, u := range paginate(users, page, limit) {
		out = append(out, *withoutHash(u))
	}
	return out, nil
}

func (r *UserRepo) Count(_ context.Context, filter userRepo.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

// paginate returns the 1-based page of items.
func paginate[T any](items []T, page, limit int) []T {
	skip := int(repository.Page(page, limit))
	if skip >= len(items) || limit <= 0 {
		return nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
