// Package config reads server settings from the environment, after an
// optional .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/wastewise/backend/utils"
	"golang.org/x/crypto/bcrypt"
)

const minSecretBytes = 32

type Config struct {
	Port         string
	MongoURI     string
	DatabaseName string

	JWTSecret     []byte
	TokenTTL      time.Duration
	CodeTTL       time.Duration
	CodeRetention time.Duration

	BcryptCost      int
	HashConcurrency int

	AllowedOrigins []string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	R2 utils.R2Config

	LogLevel  string
	LogFormat string

	DefaultQueryLimit int
	MaxQueryLimit     int
}

// Load applies .env (if present) and then reads the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, so tests need not touch
// the real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	getInt := func(key string, def int) int {
		n, err := strconv.Atoi(get(key, ""))
		if err != nil || n <= 0 {
			return def
		}
		return n
	}

	cfg := &Config{
		Port:              get("PORT", "8080"),
		MongoURI:          get("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:      get("DATABASE_NAME", "wastewise"),
		JWTSecret:         []byte(getenv("JWT_SECRET")),
		TokenTTL:          time.Duration(getInt("TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		CodeTTL:           time.Duration(getInt("CODE_TTL_MINUTES", 10)) * time.Minute,
		CodeRetention:     time.Duration(getInt("CODE_RETENTION_HOURS", 24)) * time.Hour,
		BcryptCost:        getInt("BCRYPT_COST", bcrypt.DefaultCost),
		HashConcurrency:   getInt("HASH_CONCURRENCY", 0),
		AdminName:         get("ADMIN_NAME", ""),
		AdminEmail:        get("ADMIN_EMAIL", ""),
		AdminPassword:     getenv("ADMIN_PASSWORD"),
		SMTPHost:          get("SMTP_HOST", ""),
		SMTPPort:          getInt("SMTP_PORT", 587),
		SMTPUser:          get("SMTP_USER", ""),
		SMTPPassword:      getenv("SMTP_PASSWORD"),
		SMTPFrom:          get("SMTP_FROM", ""),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "text"),
		DefaultQueryLimit: getInt("DEFAULT_READ_QUERY_LIMIT", 20),
		MaxQueryLimit:     getInt("READ_QUERY_MAX_LIMIT", 100),
		R2: utils.R2Config{
			Bucket:       get("R2_BUCKET", ""),
			AccessKey:    get("R2_ACCESS_KEY_ID", ""),
			SecretKey:    getenv("R2_SECRET_ACCESS_KEY"),
			Endpoint:     get("R2_ENDPOINT", ""),
			PublicDomain: get("R2_PUBLIC_DOMAIN", ""),
		},
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if len(cfg.JWTSecret) < minSecretBytes {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretBytes)
	}
	if cfg.DefaultQueryLimit > cfg.MaxQueryLimit {
		cfg.DefaultQueryLimit = cfg.MaxQueryLimit
	}
	return cfg, nil
}
