package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Services ServicesConfig
	Cache    CacheConfig
	Remote   RemoteConfig
	JWT      JWTConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServicesConfig holds the base URLs of the external stores this service
// consumes. The member service exposes both member profiles and the user
// endpoint that resolves an authenticated principal to its profile.
type ServicesConfig struct {
	CatalogURL string
	MemberURL  string
	UserURL    string
}

// CacheConfig holds entity cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// RemoteConfig holds the retry policy for remote lookups
type RemoteConfig struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// JWTConfig holds token validation configuration. Tokens are issued by the
// member-identity service; this service only validates them.
type JWTConfig struct {
	Secret string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		Services: loadServicesConfig(),
		Cache:    loadCacheConfig(),
		Remote:   loadRemoteConfig(),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default_secret"),
		},
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "library_borrowing"),
	}
}

// loadServicesConfig loads external store URLs
func loadServicesConfig() ServicesConfig {
	memberURL := getEnv("MEMBER_SERVICE_URL", "http://localhost:8081/api/members")

	return ServicesConfig{
		CatalogURL: getEnv("BOOK_SERVICE_URL", "http://localhost:8082/api/books"),
		MemberURL:  memberURL,
		// The user endpoint lives on the member service; derive it unless
		// overridden.
		UserURL: getEnv("USER_SERVICE_URL", strings.Replace(memberURL, "/members", "/users", 1)),
	}
}

// loadCacheConfig loads entity cache config
func loadCacheConfig() CacheConfig {
	minutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	if minutes < 1 {
		minutes = 10
	}
	return CacheConfig{TTL: time.Duration(minutes) * time.Minute}
}

// loadRemoteConfig loads the remote lookup retry policy
func loadRemoteConfig() RemoteConfig {
	attempts, _ := strconv.Atoi(getEnv("REMOTE_ATTEMPTS", "1"))
	backoffMS, _ := strconv.Atoi(getEnv("REMOTE_BACKOFF_MS", "0"))
	timeoutSec, _ := strconv.Atoi(getEnv("REMOTE_TIMEOUT_SECONDS", "10"))

	return RemoteConfig{
		Attempts: attempts,
		Backoff:  time.Duration(backoffMS) * time.Millisecond,
		Timeout:  time.Duration(timeoutSec) * time.Second,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://library.example.org"
	}
	return origins
}
