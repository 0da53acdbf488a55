// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author on the Inkwell platform.
//
// Password and the reset-token pair never leave this package boundary in
// API responses. ResetPasswordToken holds a sha256 hex digest of the
// plaintext token; the two reset fields are always set and cleared together.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"not null" json:"username"`
	Email               string     `gorm:"unique;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	AboutMe             string     `gorm:"type:text" json:"about_me"`
	AvatarID            string     `json:"-"`
	AvatarURL           string     `json:"avatar_url"`
	ResetPasswordToken  *string    `gorm:"index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Posts               []Post     `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// PublicUser is the author projection embedded in post payloads.
type PublicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Public returns the user's public profile fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
