// Package bootstrap wires up runtime dependencies shared by the server and
// the seeding CLI.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Yahya-Naji/iron-knowledge/internal/cache"
	"github.com/Yahya-Naji/iron-knowledge/internal/config"
	"github.com/Yahya-Naji/iron-knowledge/internal/database"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally seeds the demo
// accounts. The Redis client may be nil when the cache is unreachable; the
// application degrades gracefully without it.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootStaff(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff account: %w", err)
	}

	if opts.SeedDemoData {
		if err := seed.Seed(db, seed.Options{}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo customers: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevRootStaff creates or repairs the development root staff user.
// Runs only in development with DEV_BOOTSTRAP_ROOT enabled.
func ensureDevRootStaff(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "ironknowledge_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@ironknowledge.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var root models.StaffUser
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.StaffUser{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				IsAdmin:  true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.StaffUser{}).
				Where("id = ?", root.ID).
				Updates(map[string]any{
					"is_admin": true,
					"password": string(hashedPassword),
				}).Error
		}
	})
}
