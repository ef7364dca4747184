// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/poolforyou/poolforyou-api/internal/notify"
	"github.com/poolforyou/poolforyou-api/internal/storage"
)

// Storage backends for report photos.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// one year
const defaultTokenTTLMin = 525600

// Config holds every runtime setting.  It is built once in main and passed
// down explicitly.
type Config struct {
	Env  string
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret     string
	SessionTTL    time.Duration
	ActivationTTL time.Duration
	BcryptCost    int

	// ActivationURL is the frontend page that receives ?token=.
	ActivationURL string

	StorageBackend string
	UploadDir      string
	UploadLimit    string
	S3             storage.S3Config

	SMTP        notify.SMTPConfig
	RabbitMQURL string

	SessionRevocation bool
	MigrateOnStart    bool
}

// Load reads .env when present and then the environment.  Every missing or
// malformed variable is reported in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load()

	r := &reader{}
	cfg := Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: r.must("APP_PORT"),

		DBUser: r.must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: r.must("DB_HOST"),
		DBPort: r.must("DB_PORT"),
		DBName: r.must("DB_NAME"),

		JWTSecret:     r.must("JWT_SECRET"),
		SessionTTL:    time.Duration(r.intOr("SESSION_TOKEN_TTL_MIN", defaultTokenTTLMin)) * time.Minute,
		ActivationTTL: time.Duration(r.intOr("ACTIVATION_TOKEN_TTL_MIN", defaultTokenTTLMin)) * time.Minute,
		BcryptCost:    r.intOr("BCRYPT_COST", 12),

		ActivationURL: envStr("ACTIVATION_URL", "http://localhost:8080/activate.html"),

		StorageBackend: strings.ToLower(envStr("STORAGE_BACKEND", StorageLocal)),
		UploadDir:      envStr("UPLOAD_DIR", "uploads"),
		UploadLimit:    envStr("UPLOAD_BODY_LIMIT", "25M"),
		S3: storage.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
		},

		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envStr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			Timeout:  envDur("SMTP_TIMEOUT", 15*time.Second),
		},
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		SessionRevocation: envBool("SESSION_REVOCATION", false),
		MigrateOnStart:    envBool("MIGRATE_ON_START", true),
	}

	if cfg.StorageBackend != StorageLocal && cfg.StorageBackend != StorageS3 {
		r.fail("STORAGE_BACKEND", fmt.Errorf("unknown backend %q", cfg.StorageBackend))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		r.fail("BCRYPT_COST", fmt.Errorf("cost %d out of range 4..31", cfg.BcryptCost))
	}
	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader collects problems so one run reports all of them.
type reader struct {
	errs []error
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

func (r *reader) err() error { return errors.Join(r.errs...) }

func (r *reader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.fail(key, errors.New("missing required env var"))
	}
	return v
}

func (r *reader) intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		r.fail(key, fmt.Errorf("invalid positive int %q", v))
		return def
	}
	return n
}
