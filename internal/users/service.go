package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/selgo-dev/selgo-web/internal/auth"
	"github.com/selgo-dev/selgo-web/internal/cache"
	"github.com/selgo-dev/selgo-web/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// ProfileCache caches user rows by ID
type ProfileCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedProfile is what goes into the cache; it never carries the password hash
type cachedProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages accounts and resolves session tokens to users
type Service struct {
	db     *gorm.DB
	tokens *auth.Issuer
	cache  ProfileCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService creates a user service. cache may be nil.
func NewService(db *gorm.DB, tokens *auth.Issuer, cache ProfileCache, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{db: db, tokens: tokens, cache: cache, ttl: ttl, logger: logger}
}

// Register creates an account and returns it with a session token
func (s *Service) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	email = normalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	return user, token, nil
}

// Authenticate checks credentials and returns the user with a session token
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User signed in")
	return &user, token, nil
}

// Fetch validates token and loads the current profile, going through the cache when configured
func (s *Service) Fetch(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, claims.UserID)
}

// Peek returns the user carried by token's claims without touching storage
func (s *Service) Peek(token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: claims.Email, Name: claims.Name}
	user.ID = claims.UserID
	return user, nil
}

// Get loads a user by ID
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	if s.cache != nil {
		var cached cachedProfile
		err := s.cache.GetJSON(ctx, profileKey(id), &cached)
		if err == nil {
			user := &models.User{Email: cached.Email, Name: cached.Name}
			user.ID = cached.ID
			user.CreatedAt = cached.CreatedAt
			return user, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("Profile cache read failed")
		}
	}

	var user models.User
	if err := models.FindByID(s.db.WithContext(ctx), id, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if s.cache != nil {
		profile := cachedProfile{ID: user.ID, Email: user.Email, Name: user.Name, CreatedAt: user.CreatedAt}
		if err := s.cache.SetJSON(ctx, profileKey(id), profile, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("Profile cache write failed")
		}
	}
	return &user, nil
}

// UpdateName changes the display name and evicts the cached profile
func (s *Service) UpdateName(ctx context.Context, id, name string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("name", strings.TrimSpace(name))
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.evict(ctx, id)
	return nil
}

// IssueToken signs a fresh session token for u, e.g. after a profile change
func (s *Service) IssueToken(u *models.User) (string, error) {
	return s.tokens.GenerateToken(u.ID, u.Email, u.Name)
}

// Logout forgets the cached profile of userID
func (s *Service) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	s.evict(ctx, userID)
	s.logger.Info().Str("user_id", userID).Msg("User signed out")
}

func (s *Service) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("Profile cache evict failed")
	}
}

func profileKey(id string) string {
	return "profile:" + id
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
