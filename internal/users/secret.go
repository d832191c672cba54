package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/selgo-dev/selgo-web/internal/models"
)

// EnsureJWTSecret returns the token signing secret stored in the database,
// generating and saving one on first use.
func EnsureJWTSecret(ctx context.Context, db *gorm.DB) (string, error) {
	var cfg models.Config
	err := db.WithContext(ctx).Order("id").First(&cfg).Error
	if err == nil {
		return cfg.JWTSecret, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	// 64 hex characters = 32 bytes of randomness
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	cfg = models.Config{JWTSecret: hex.EncodeToString(secretBytes)}
	if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return "", fmt.Errorf("failed to store JWT secret: %w", err)
	}

	// Another process may have stored one first; the oldest row wins
	var first models.Config
	if err := db.WithContext(ctx).Order("id").First(&first).Error; err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return first.JWTSecret, nil
}
