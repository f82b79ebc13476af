package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server and the admin CLI need at startup.
type Config struct {
	Port     int
	MongoURI string
	MongoDB  string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	StatusSyncInterval time.Duration
	LogLevel           slog.Level
}

// Load reads .env (if present), the environment and finally the given
// command-line flags. Flags win over env, env wins over defaults.
func Load(args []string) (Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("election-portal", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.MongoURI, "mongo", cfg.MongoURI, "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDB, "db", cfg.MongoDB, "MongoDB database name")
	fs.DurationVar(&cfg.StatusSyncInterval, "status-sync", cfg.StatusSyncInterval, "Election status sync interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}

// LoadEnv applies .env and the environment to the defaults without
// validating the server-only settings.
func LoadEnv() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using environment variables")
	}

	cfg := Config{
		Port:               8080,
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            "election_portal",
		SessionTTL:         24 * time.Hour,
		CORSOrigins:        "*",
		MinioEndpoint:      "localhost:9000",
		MinioAccessKey:     "minioadmin",
		MinioSecretKey:     "minioadmin",
		MinioBucket:        "id-proofs",
		StatusSyncInterval: time.Minute,
		LogLevel:           slog.LevelInfo,
	}

	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		c.Port = port
	}
	setString(&c.MongoURI, "MONGO_URI")
	setString(&c.MongoDB, "MONGO_DB")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.CORSOrigins, "CORS_ORIGINS")
	setString(&c.MinioEndpoint, "MINIO_ENDPOINT")
	setString(&c.MinioAccessKey, "MINIO_ACCESS_KEY")
	setString(&c.MinioSecretKey, "MINIO_SECRET_KEY")
	setString(&c.MinioBucket, "MINIO_BUCKET")

	if err := setBool(&c.MinioUseSSL, "MINIO_USE_SSL"); err != nil {
		return err
	}
	if err := setBool(&c.CookieSecure, "COOKIE_SECURE"); err != nil {
		return err
	}
	if err := setDuration(&c.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.StatusSyncInterval, "STATUS_SYNC_INTERVAL"); err != nil {
		return err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
