package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with generated users and posts.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Posts go first to satisfy the foreign
// key to users.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

// SeedUsers creates n users: one admin, a couple of moderators, the rest
// regular users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	if n < 1 {
		n = 1
	}
	log.Printf("Seeding %d users...", n)

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		role := models.RoleUser
		switch {
		case i == 0:
			role = models.RoleAdmin
		case i <= 2 && n > 3:
			role = models.RoleModerator
		}

		user, err := s.factory.CreateUser(func(u *models.User) {
			u.Role = role
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates n posts spread across the given authors.
func (s *Seeder) SeedPosts(authors []*models.User, n int) error {
	if len(authors) == 0 {
		return fmt.Errorf("no authors to seed posts for")
	}
	log.Printf("Seeding %d posts...", n)

	for i := 0; i < n; i++ {
		author := authors[i%len(authors)]
		if _, err := s.factory.CreatePost(author); err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
	}
	return nil
}

// Run clears (optionally) and seeds the database.
func (s *Seeder) Run(users, posts int, clean bool) error {
	if clean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}
	authors, err := s.SeedUsers(users)
	if err != nil {
		return err
	}
	if err := s.SeedPosts(authors, posts); err != nil {
		return err
	}
	log.Printf("Seeding complete: %d users, %d posts", users, posts)
	return nil
}
