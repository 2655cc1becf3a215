// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of user roles. Admin implies moderator
// capabilities; moderator does not imply admin.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// User represents a user account in the Inkwell application.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"unique;not null;index" json:"email"`
	FirstName      string         `gorm:"not null" json:"first_name"`
	LastName       string         `gorm:"not null" json:"last_name"`
	Role           Role           `gorm:"not null;default:user" json:"role"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified     bool           `gorm:"not null;default:false" json:"is_verified"`
	HashedPassword string         `gorm:"not null" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastLogin      *time.Time     `json:"last_login,omitempty"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Posts          []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator reports whether the user holds moderation capabilities
// (admins moderate too).
func (u *User) IsModerator() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// CanEditPost reports whether the user may edit the given post.
func (u *User) CanEditPost(post *Post) bool {
	return u.IsModerator() || post.UserID == u.ID
}

// CanDeletePost reports whether the user may delete the given post.
func (u *User) CanDeletePost(post *Post) bool {
	return u.IsAdmin() || post.UserID == u.ID
}

// PublicProfile returns a copy of the user with private fields
// (email, last login) stripped for non-privileged viewers.
func (u *User) PublicProfile() *User {
	return &User{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
