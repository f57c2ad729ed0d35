package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tasksetu/pkg/jwtx"
)

// MinBcryptCost is the lowest work factor accepted from the environment.
const MinBcryptCost = 10

type Config struct {
	JWTSecret string        // Required outside dev: HS256 signing secret
	JWTTTL    time.Duration // Session token validity (default: 7 days)
	JWTIssuer string        // Issuer claim for tokens (default: tasksetu)

	StoreDriver   string // sqlite or mongo (default: sqlite)
	DatabaseFile  string // Path to SQLite database file (default: ./tasksetu.db)
	MongoURI      string // Mongo connection string (default: mongodb://localhost:27017)
	MongoDatabase string // Mongo database name (default: tasksetu)
	MongoMaxPool  int    // Mongo driver pool size (default: 50)

	Port       int    // HTTP server port (default: 8080)
	AppBaseURL string // Frontend base URL used in email links

	InviteTTL       time.Duration // Invitation validity (default: 7 days)
	ResetTTL        time.Duration // Password reset validity (default: 30m)
	VerifyTTL       time.Duration // Email verification validity (default: 24h)
	InviteRetention time.Duration // Expired invitations are purged after this (default: 30 days)

	BcryptCost     int    // Password hash cost (default: 12)
	BootstrapToken string // Optional: enables POST /api/bootstrap

	MailDriver   string // log or smtp (default: log in dev, smtp elsewhere)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")
	mailDriver := "smtp"
	if env == "dev" {
		mailDriver = "log"
	}

	return Config{
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDurationOrDefault("JWT_TTL", 7*24*time.Hour),
		JWTIssuer: getEnvOrDefault("JWT_ISSUER", "tasksetu"),

		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", "sqlite")),
		DatabaseFile:  getEnvOrDefault("DATABASE_FILE", "tasksetu.db"),
		MongoURI:      getEnvOrDefault("MONGODB_URI", getEnvOrDefault("DATABASE_URL", "mongodb://localhost:27017")),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "tasksetu"),
		MongoMaxPool:  getEnvIntOrDefault("MONGODB_MAX_POOL", 50),

		Port:       getEnvIntOrDefault("PORT", 8080),
		AppBaseURL: getEnvOrDefault("APP_BASE_URL", "http://localhost:5173"),

		InviteTTL:       getEnvDurationOrDefault("INVITE_TTL", 7*24*time.Hour),
		ResetTTL:        getEnvDurationOrDefault("RESET_TTL", 30*time.Minute),
		VerifyTTL:       getEnvDurationOrDefault("VERIFY_TTL", 24*time.Hour),
		InviteRetention: getEnvDurationOrDefault("INVITE_RETENTION", 30*24*time.Hour),

		BcryptCost:     getEnvIntOrDefault("BCRYPT_COST", 12),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"), // Optional: if set, required to perform bootstrap

		MailDriver:   strings.ToLower(getEnvOrDefault("MAIL_DRIVER", mailDriver)),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "TaskSetu <no-reply@tasksetu.local>"),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// IsDev reports whether the service runs in the dev environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

// Validate rejects configurations the service must not start with. An
// empty JWT secret is only tolerated in dev, where New generates a
// throwaway one. The log mailer writes live link tokens to the log, so it
// is also dev only.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.JWTSecret == "" && !c.IsDev():
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case c.JWTSecret != "" && len(c.JWTSecret) < jwtx.MinSecretBytes:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretBytes))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	switch c.StoreDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case "mongo":
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGODB_URI and MONGODB_DATABASE are required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.MailDriver {
	case "log":
		if !c.IsDev() {
			errs = append(errs, errors.New("MAIL_DRIVER=log is only allowed in dev"))
		}
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}

	if c.BcryptCost < MinBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", MinBcryptCost))
	}
	if c.InviteTTL <= 0 || c.ResetTTL <= 0 || c.VerifyTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
