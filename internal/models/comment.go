// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment on a post. AuthorName is free text supplied
// by the commenter, not a reference to a user record.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	AuthorName string    `gorm:"not null" json:"author_name"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt  time.Time `json:"created_at"`
}
