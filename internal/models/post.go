// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Content block types. A post body is an ordered sequence of typed blocks.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
	BlockTypeCode  = "code"
	BlockTypeLink  = "link"
)

// ContentBlock is one typed unit of a post body, rendered in sequence.
// Text carries the payload for text and code blocks, URL for image and
// link blocks. Language is optional metadata for code blocks.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty"`
	Language string `json:"language,omitempty"`
}

// ValidBlockType reports whether t names a known content block type.
func ValidBlockType(t string) bool {
	switch t {
	case BlockTypeText, BlockTypeImage, BlockTypeCode, BlockTypeLink:
		return true
	}
	return false
}

// Post represents a blog post.
//
// Likes and CommentsCount are denormalized aggregate counters kept on the
// post row for fast feed reads. CommentsCount must always equal the number
// of live comment rows for the post; both counters are only ever mutated
// with atomic store-level increments, never read-modify-write.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Content       []ContentBlock `gorm:"serializer:json;type:text;not null" json:"content"`
	AuthorID      uint           `gorm:"not null;index" json:"author_id"`
	Author        *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Likes         int            `gorm:"not null;default:0" json:"likes"`
	CommentsCount int            `gorm:"not null;default:0" json:"comments_count"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
