// Package bootstrap wires runtime dependencies shared by the command-line
// entry points.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/security"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client may be
// nil when the server is unreachable; callers must tolerate that.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return db, r, nil
}

// ensureDevRootAdmin creates or repairs the fixed development admin account
// so a fresh database is usable without manual promotion. Development only,
// and opt-in.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@inkwell.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Email:          email,
				FirstName:      "Root",
				LastName:       "Admin",
				Role:           models.RoleAdmin,
				IsActive:       true,
				IsVerified:     true,
				HashedPassword: hashed,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		}

		root.Role = models.RoleAdmin
		root.IsActive = true
		root.IsVerified = true
		root.HashedPassword = hashed
		return tx.Save(&root).Error
	})
}
