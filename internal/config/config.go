package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Wish       WishConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Admin      AdminConfig
	Backup     BackupConfig
	Live       LiveConfig
	Moderation ModerationConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	PublicAPIURL string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects where the wishes document lives.
type StoreConfig struct {
	Backend      string // file | memory | redis | mongo
	DataFile     string
	Lock         bool
	StrictWrites bool
}

type WishConfig struct {
	Title    string
	Timezone string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Key      string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// AdminConfig guards destructive routes. Both empty means open access.
type AdminConfig struct {
	JWTSecret    string
	OIDCIssuer   string
	OIDCClientID string
}

type BackupConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Interval  time.Duration
}

type LiveConfig struct {
	Enabled bool
}

// ModerationConfig lists words masked out of new wishes.
type ModerationConfig struct {
	Words []string
	Mask  rune
	// FoldDiacritics matches blocked words regardless of Vietnamese tone and
	// vowel marks. It catches misspelled variants but also masks unrelated
	// words ("ngu" then hits "ngủ" and "ngư"), so it is off by default.
	FoldDiacritics bool
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("PUBLIC_API_URL", "http://localhost:3001/api")
	v.SetDefault("STORE_BACKEND", "file")
	v.SetDefault("DATA_FILE", "/tmp/db.json")
	v.SetDefault("STORE_LOCK", true)
	v.SetDefault("STRICT_WRITES", true)
	v.SetDefault("WISH_TITLE", "Lời Tri Ân")
	v.SetDefault("DATE_TIMEZONE", "Local")
	v.SetDefault("MONGODB_DATABASE", "tribute")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_KEY", "wishes:document")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("MINIO_BUCKET", "tribute-backups")
	v.SetDefault("BACKUP_INTERVAL", "0s")
	v.SetDefault("LIVE_ENABLED", true)
	v.SetDefault("MODERATION_MASK", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			PublicAPIURL: strings.TrimRight(v.GetString("PUBLIC_API_URL"), "/"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
			DataFile:     v.GetString("DATA_FILE"),
			Lock:         v.GetBool("STORE_LOCK"),
			StrictWrites: v.GetBool("STRICT_WRITES"),
		},
		Wish: WishConfig{
			Title:    v.GetString("WISH_TITLE"),
			Timezone: v.GetString("DATE_TIMEZONE"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			Key:      v.GetString("REDIS_KEY"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Admin: AdminConfig{
			JWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
			OIDCIssuer:   v.GetString("OIDC_ISSUER"),
			OIDCClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		Backup: BackupConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Interval:  v.GetDuration("BACKUP_INTERVAL"),
		},
		Live: LiveConfig{
			Enabled: v.GetBool("LIVE_ENABLED"),
		},
		Moderation: ModerationConfig{
			Words:          splitList(v.GetString("MODERATION_WORDS")),
			Mask:           firstRune(v.GetString("MODERATION_MASK"), '*'),
			FoldDiacritics: v.GetBool("MODERATION_FOLD_DIACRITICS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList splits a comma separated value, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstRune(s string, def rune) rune {
	for _, r := range s {
		return r
	}
	return def
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// AdminGuarded reports whether destructive routes need a bearer token.
func (c *Config) AdminGuarded() bool {
	return c.Admin.JWTSecret != "" || c.Admin.OIDCIssuer != ""
}

// BackupEnabled reports whether object storage snapshots are configured.
func (c *Config) BackupEnabled() bool {
	return c.Backup.Endpoint != ""
}

// Validate rejects combinations that cannot start.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file":
		if c.Store.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required when STORE_BACKEND=file")
		}
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required when STORE_BACKEND=redis")
		}
	case "mongo":
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Server.Port, err)
	}
	if _, err := time.LoadLocation(c.Wish.Timezone); err != nil {
		return fmt.Errorf("invalid DATE_TIMEZONE %q: %w", c.Wish.Timezone, err)
	}
	if c.RateLimit.Enabled && c.RateLimit.UseRedis && c.Redis.Host == "" {
		return fmt.Errorf("RATE_LIMIT_USE_REDIS requires REDIS_HOST")
	}
	if c.Admin.OIDCIssuer != "" && c.Admin.OIDCClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC_ISSUER is set")
	}
	return nil
}
