package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Auth Configuration
	Auth AuthConfig

	// Logging Configuration
	Logging LoggingConfig

	// Site holds the page and route settings (optionally loaded from selgo.yaml)
	Site SiteConfig
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Address        string
	AllowOrigins   []string
	UploadsBackend string // Base URL of the boat service serving /uploads/*
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address    string // Redis address (host:port), empty disables cache and jobs
	ProfileTTL time.Duration
}

// Enabled reports whether a Redis address is configured
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// AuthConfig holds session configuration
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	FetchTimeout time.Duration // Upper bound on the guard's user fetch
	SecureCookie bool
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// SiteConfig holds route and page composition settings
type SiteConfig struct {
	Name            string     `yaml:"name"`
	ProtectedRoutes []string   `yaml:"protected_routes"`
	Nav             []NavEntry `yaml:"nav"`
	Banner          Banner     `yaml:"banner"`
	FeaturedPerPage int        `yaml:"featured_per_page"`
	RotateSchedule  string     `yaml:"rotate_schedule"` // Cron expression for featured rotation
}

// NavEntry is a header navigation link
type NavEntry struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Banner is the home page hero banner
type Banner struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	ImageURL string `yaml:"image_url"`
	CTALabel string `yaml:"cta_label"`
	CTAHref  string `yaml:"cta_href"`
}

// DefaultProtectedRoutes are the paths that require a signed-in user
var DefaultProtectedRoutes = []string{
	"/routes/profile",
	"/routes/profile/*",
	"/routes/favorites",
	"/routes/favorites/:id",
	"/routes/my-ads",
	"/routes/post-ad",
	"/routes/listings/:id/edit",
	"/api/auth/me",
}

// DefaultSite returns the built-in site configuration
func DefaultSite() SiteConfig {
	return SiteConfig{
		Name:            "Selgo",
		ProtectedRoutes: append([]string(nil), DefaultProtectedRoutes...),
		Nav: []NavEntry{
			{Label: "Boats", Href: "/routes/boat"},
			{Label: "Cars", Href: "/routes/car"},
			{Label: "Motorcycles", Href: "/routes/motorcycle"},
			{Label: "Real estate", Href: "/routes/real-estate"},
			{Label: "Travel", Href: "/routes/travel"},
			{Label: "Jobs", Href: "/routes/job"},
		},
		Banner: Banner{
			Title:    "Buy and sell with Selgo",
			Subtitle: "Boats, cars, homes, trips and jobs in one place",
			ImageURL: "/uploads/banners/home.jpg",
			CTALabel: "Post an ad",
			CTAHref:  "/routes/post-ad",
		},
		FeaturedPerPage: 8,
		RotateSchedule:  "0 */6 * * *",
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	tokenTTL, err := durationEnv("AUTH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := durationEnv("AUTH_FETCH_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	profileTTL, err := durationEnv("REDIS_PROFILE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	secureCookie := false
	if v := os.Getenv("AUTH_SECURE_COOKIE"); v != "" {
		secureCookie, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_SECURE_COOKIE: %w", err)
		}
	}

	site := DefaultSite()
	if path := envOr("SITE_CONFIG", "selgo.yaml"); path != "" {
		if err := loadSiteFile(path, &site); err != nil {
			return nil, err
		}
	}

	return &Config{
		HTTP: HTTPConfig{
			Address:        envOr("HTTP_ADDRESS", ":8080"),
			AllowOrigins:   []string{envOr("CORS_ORIGIN", "http://localhost:3000")},
			UploadsBackend: envOr("UPLOADS_BACKEND", "http://localhost:8081"),
		},
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "selgo.sqlite"),
		},
		Redis: RedisConfig{
			Address:    os.Getenv("REDIS_ADDRESS"),
			ProfileTTL: profileTTL,
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"), // empty: a random secret is generated and stored in the database
			TokenTTL:     tokenTTL,
			FetchTimeout: fetchTimeout,
			SecureCookie: secureCookie,
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Site: site,
	}, nil
}

// loadSiteFile overlays a YAML site file onto site. A missing file is not an error.
func loadSiteFile(path string, site *SiteConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseSite(data, site)
}

// ParseSite decodes YAML onto site, keeping defaults for fields the document omits
func ParseSite(data []byte, site *SiteConfig) error {
	if err := yaml.Unmarshal(data, site); err != nil {
		return fmt.Errorf("failed to parse site config: %w", err)
	}
	if site.FeaturedPerPage <= 0 {
		return fmt.Errorf("invalid site config: featured_per_page must be positive, got %d", site.FeaturedPerPage)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
