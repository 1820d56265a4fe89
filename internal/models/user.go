package models

import (
	"fmt"
	"strings"
	"time"
)

// User is the account model backing authentication and the personal library.
//
// Password mechanics live in the server layer; the model only carries the
// resulting hash. Google-provisioned accounts have an empty hash and the
// googleUser flag set.
type User struct {
	id             string
	sequence       int
	email          string
	passwordHash   string
	name           string
	profilePicture string
	googleUser     bool
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewUser creates a user with the given sequence, email and display name.
func NewUser(sequence int, email, name string) *User {
	now := time.Now()
	if name == "" {
		// Fall back to the mailbox part of the email, matching signup behavior.
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &User{
		sequence:  sequence,
		email:     strings.ToLower(strings.TrimSpace(email)),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) Name() string          { return u.name }
func (u *User) ProfilePicture() string { return u.profilePicture }
func (u *User) IsGoogleUser() bool    { return u.googleUser }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)                 { u.id = id }
func (u *User) SetPasswordHash(hash string)     { u.passwordHash = hash }
func (u *User) SetName(name string)             { u.name = name }
func (u *User) SetProfilePicture(url string)    { u.profilePicture = url }
func (u *User) SetGoogleUser(v bool)            { u.googleUser = v }
func (u *User) SetCreatedAt(t time.Time)        { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)        { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)       { u.deletedAt = t }

// Validate checks that the user has a plausible email and an identity source.
func (u *User) Validate() error {
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("invalid email: %q", u.email)
	}
	if u.passwordHash == "" && !u.googleUser {
		return fmt.Errorf("user %s has no credentials", u.email)
	}
	return nil
}

// View is the public representation of a user returned by the API.
type UserView struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
	IsGoogleUser   bool   `json:"isGoogleUser,omitempty"`
}

// View returns the API-safe projection of the user.
func (u *User) View() UserView {
	return UserView{
		ID:             u.id,
		Email:          u.email,
		Name:           u.name,
		ProfilePicture: u.profilePicture,
		IsGoogleUser:   u.googleUser,
	}
}
