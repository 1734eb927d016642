package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Identity    IdentityConfig
	PriceOracle PriceOracleConfig
	Push        PushConfig
	Leaderboard LeaderboardConfig
	Jobs        JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// IdentityConfig selects and configures the identity verifier.
// Provider is "firebase" in production and "local" for development tokens.
type IdentityConfig struct {
	Provider          string
	FirebaseProjectID string
	JWKSURL           string
	KeysRefresh       time.Duration
	LocalSecret       string
	LocalTokenExpiry  time.Duration
}

// PriceOracleConfig holds CoinGecko client settings
type PriceOracleConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerMinute int
	DisplayCurrency   string
}

// PushConfig holds Expo push gateway settings
type PushConfig struct {
	ExpoURL     string
	AccessToken string
	Timeout     time.Duration
}

// LeaderboardConfig holds leaderboard settings
type LeaderboardConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	StreakResetCron string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "5000"),
			Env:             getEnv("SERVER_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvAsInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "savingz"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrateOnStart: getEnvAsBool("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Identity: IdentityConfig{
			Provider:          strings.ToLower(getEnv("IDENTITY_PROVIDER", "firebase")),
			FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
			JWKSURL:           getEnv("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
			KeysRefresh:       getEnvAsDuration("FIREBASE_KEYS_REFRESH", time.Hour),
			LocalSecret:       getEnv("LOCAL_IDENTITY_SECRET", "change-this-in-production"),
			LocalTokenExpiry:  getEnvAsDuration("LOCAL_IDENTITY_EXPIRY", 24*time.Hour),
		},
		PriceOracle: PriceOracleConfig{
			BaseURL:           getEnv("COINGECKO_API", "https://api.coingecko.com/api/v3"),
			APIKey:            getEnv("COINGECKO_API_KEY", ""),
			Timeout:           getEnvAsDuration("PRICE_ORACLE_TIMEOUT", 5*time.Second),
			CacheTTL:          getEnvAsDuration("PRICE_CACHE_TTL", 60*time.Second),
			RequestsPerMinute: getEnvAsInt("PRICE_ORACLE_RPM", 30),
			DisplayCurrency:   strings.ToLower(getEnv("DISPLAY_CURRENCY", "ngn")),
		},
		Push: PushConfig{
			ExpoURL:     getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			AccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),
			Timeout:     getEnvAsDuration("PUSH_TIMEOUT", 10*time.Second),
		},
		Leaderboard: LeaderboardConfig{
			CacheTTL:     getEnvAsDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),
			DefaultLimit: getEnvAsInt("LEADERBOARD_DEFAULT_LIMIT", 10),
		},
		Jobs: JobsConfig{
			StreakResetCron: getEnv("STREAK_RESET_CRON", "@daily"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
