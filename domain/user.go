package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the internal record of a person using the app. Users are never created
// by a direct request: they are synced from the identity provider on first sign in,
// ExternalID being the provider's subject for that person. Email is nil when the
// provider shares no address.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	ExternalID string `json:"-" gorm:"notNull;uniqueIndex"`
	Email      *string `json:"email" gorm:"uniqueIndex"`
	Name       string `json:"name"`
	Handle     string `json:"handle" gorm:"notNull;uniqueIndex"`
	Bio        string `json:"bio"`
	Image      string `json:"image"`
	Website    string `json:"website"`
	Location   string `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id to users that don't have one yet.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the public slice of a User that gets embedded into posts,
// comments and notifications.
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Image  string `json:"image"`
}

// ProfileUpdate holds the mutable profile fields. All of them are written on update.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// Profile is the public view of a user together with its follower, following and post counts.
type Profile struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Handle    string        `json:"handle"`
	Bio       string        `json:"bio"`
	Image     string        `json:"image"`
	Website   string        `json:"website"`
	Location  string        `json:"location"`
	CreatedAt time.Time     `json:"created_at"`
	Counts    ProfileCounts `json:"_count"`
}

type ProfileCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByHandle(ctx context.Context, handle string) (*User, error)
	ByExternalID(ctx context.Context, externalID string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateProfile(ctx context.Context, externalID string, upd *ProfileUpdate) (*User, error)
	Profile(ctx context.Context, handle string) (*Profile, error)
}

// Identity is what the identity provider tells us about a signed in person.
// It is the input for creating the matching User on first sign in.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Username   string
	Picture    string
}
