package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Scheduling SchedulingConfig
	JWT        JWTConfig
	Redis      RedisConfig
}

// SchedulingConfig holds defaults for the lesson-assignment engine,
// overridable per request via the handler payload.
type SchedulingConfig struct {
	SlotMinutes   *int
	BufferMinutes int
	DayOpenCost   int
	GapPenalty    int
}

// JWTConfig holds bearer-token signing parameters for the teacher-account
// API surface.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// RedisConfig holds the optional revoked-token set backend. Addr == ""
// means Redis is unconfigured and the in-process fallback is used.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Address string
	BaseURL string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver         string // "postgres" or "sqlite"
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment     string
	DefaultTimezone string
	EncryptionKey   string
}

// ConnectionString returns the database connection string
func (d DatabaseConfig) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Name // For SQLite, Name is the file path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "sqlite"),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "meetwhen"),
			Password:       getEnv("DB_PASSWORD", "meetwhen"),
			Name:           getEnv("DB_NAME", "meetwhen.db"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		App: AppConfig{
			Environment:     getEnv("APP_ENV", "development"),
			DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
			EncryptionKey:   getEnv("ENCRYPTION_KEY", ""),
		},
	}

	var slotMinutes *int
	if v := getEnvInt("SCHEDULING_SLOT_MINUTES", 0); v > 0 {
		slotMinutes = &v
	}
	cfg.Scheduling = SchedulingConfig{
		SlotMinutes:   slotMinutes,
		BufferMinutes: getEnvInt("SCHEDULING_BUFFER_MINUTES", 0),
		DayOpenCost:   getEnvInt("SCHEDULING_DAY_OPEN_COST", 10000),
		GapPenalty:    getEnvInt("SCHEDULING_GAP_PENALTY", 5),
	}

	cfg.JWT = JWTConfig{
		Secret:   getEnv("JWT_SECRET", ""),
		TokenTTL: time.Duration(getEnvInt("JWT_TOKEN_TTL_MINUTES", 60)) * time.Minute,
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Validate required configuration
	if cfg.App.EncryptionKey == "" && cfg.App.Environment == "production" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required in production")
	}

	// Set default encryption key for development
	if cfg.App.EncryptionKey == "" {
		cfg.App.EncryptionKey = "development-key-32-bytes-long!!"
	}

	if cfg.JWT.Secret == "" {
		if cfg.App.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "development-jwt-secret-do-not-use-in-prod"
	}

	return cfg, nil
}

// LoadWithFile layers an optional config file (yaml, json, toml - anything
// viper recognizes from its extension) underneath the environment. Env vars
// still win: any key already set in the process environment is left alone,
// so this never changes getEnv's precedence, only fills gaps a file covers.
func LoadWithFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Load()
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		envKey := envKeyFor(key)
		if os.Getenv(envKey) != "" {
			continue
		}
		if val := v.GetString(key); val != "" {
			os.Setenv(envKey, val)
		}
	}

	return Load()
}

func envKeyFor(viperKey string) string {
	out := make([]byte, 0, len(viperKey))
	for _, r := range viperKey {
		if r == '.' || r == '-' {
			out = append(out, '_')
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, byte(r))
	}
	return string(out)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
