package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PostStatus is the post lifecycle state. Transitions:
// draft -> published -> archived; draft -> archived; archived is terminal.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// ValidPostStatus reports whether s is one of the known statuses.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// wordsPerMinute is the reading speed assumed by ReadingTime.
const wordsPerMinute = 250

// Post represents a content post in the Inkwell application.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Author      *User          `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Slug        string         `gorm:"unique;not null;index" json:"slug"`
	Excerpt     string         `json:"excerpt,omitempty"`
	Status      PostStatus     `gorm:"not null;default:draft;index" json:"status"`
	Tags        string         `json:"tags,omitempty"`
	ViewCount   int            `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPublished reports whether the post is visible to everyone.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft reports whether the post is still a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// WordCount returns the whitespace-token count of the content.
func (p *Post) WordCount() int {
	return len(strings.Fields(p.Content))
}

// ReadingTime estimates reading time in minutes, never less than one.
func (p *Post) ReadingTime() int {
	minutes := p.WordCount() / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// TagList splits the comma-joined tags field into individual tags.
func (p *Post) TagList() []string {
	if strings.TrimSpace(p.Tags) == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
