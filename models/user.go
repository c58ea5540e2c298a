// models/user.go
package models

import "time"

// Role is the capability class of an identity.
type Role string

const (
	// RoleSeeker books companions. The wire value "user" is kept for the frontend.
	RoleSeeker    Role = "user"
	RoleCompanion Role = "companion"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleCompanion, RoleAdmin:
		return true
	}
	return false
}

type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Preferences struct {
	Languages []string `bson:"languages,omitempty" json:"languages,omitempty"`
	Interests []string `bson:"interests,omitempty" json:"interests,omitempty"`
}

type ProfileImage struct {
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// User is a platform identity: seeker, companion or administrator.
type User struct {
	ID           string        `bson:"id" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	Phone        string        `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth  *time.Time    `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	Gender       string        `bson:"gender,omitempty" json:"gender,omitempty"`
	ProfileImage *ProfileImage `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	Role         Role          `bson:"role" json:"role"`
	IsVerified   bool          `bson:"is_verified" json:"isVerified"`
	IsActive     bool          `bson:"is_active" json:"isActive"`
	Preferences  Preferences   `bson:"preferences" json:"preferences"`

	// Companion-only pricing attributes. Nil means the platform default applies.
	PricePerHour         *float64 `bson:"price_per_hour,omitempty" json:"pricePerHour,omitempty"`
	CommissionPercentage *float64 `bson:"commission_percentage,omitempty" json:"commissionPercentage,omitempty"`

	Ratings    Ratings   `bson:"ratings" json:"ratings"`
	LastActive time.Time `bson:"last_active" json:"lastActive"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsBookable reports whether the identity can be the target of a booking.
func (u *User) IsBookable() bool {
	return u != nil && u.Role == RoleCompanion && u.IsVerified && u.IsActive
}

// Summary returns the display subset attached to bookings and chats.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
	}
}

// UserSummary is the public view of an identity embedded in other responses.
type UserSummary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone,omitempty"`
	ProfileImage *ProfileImage `json:"profileImage,omitempty"`
}
