package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"JWT_SECRET", "JWT_TTL", "STORE_DRIVER", "MAIL_DRIVER", "INVITE_TTL",
		"RESET_TTL", "VERIFY_TTL", "INVITE_RETENTION", "BCRYPT_COST", "ENV",
		"MONGODB_URI", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	require.Equal(t, "tasksetu", cfg.JWTIssuer)
	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, "log", cfg.MailDriver)
	require.Equal(t, 7*24*time.Hour, cfg.InviteTTL)
	require.Equal(t, 30*time.Minute, cfg.ResetTTL)
	require.Equal(t, 24*time.Hour, cfg.VerifyTTL)
	require.Equal(t, 30*24*time.Hour, cfg.InviteRetention)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.True(t, cfg.IsDev())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RESET_TTL", "15")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DATABASE_URL", "mongodb://db:27017")
	t.Setenv("MONGODB_MAX_POOL", "nope")

	cfg := LoadConfig()
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
	require.Equal(t, 15*time.Minute, cfg.ResetTTL)
	require.Equal(t, "mongo", cfg.StoreDriver)
	require.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	require.Equal(t, 50, cfg.MongoMaxPool)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			JWTSecret:     strings.Repeat("x", 32),
			JWTTTL:        time.Hour,
			StoreDriver:   "sqlite",
			DatabaseFile:  "tasksetu.db",
			MailDriver:    "smtp",
			SMTPHost:      "smtp.test",
			BcryptCost:    12,
			InviteTTL:     time.Hour,
			ResetTTL:      time.Hour,
			VerifyTTL:     time.Hour,
			Env:           "prod",
			MongoDatabase: "tasksetu",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret outside dev", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"unknown store", func(c *Config) { c.StoreDriver = "postgres" }, "unknown STORE_DRIVER"},
		{"mongo without uri", func(c *Config) { c.StoreDriver = "mongo" }, "MONGODB_URI"},
		{"smtp without host", func(c *Config) { c.SMTPHost = "" }, "SMTP_HOST"},
		{"log mailer outside dev", func(c *Config) { c.MailDriver = "log" }, "MAIL_DRIVER=log"},
		{"unknown mail driver", func(c *Config) { c.MailDriver = "pigeon" }, "unknown MAIL_DRIVER"},
		{"weak bcrypt", func(c *Config) { c.BcryptCost = 4 }, "BCRYPT_COST"},
		{"zero ttl", func(c *Config) { c.ResetTTL = 0 }, "TTLs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("dev tolerates missing secret", func(t *testing.T) {
		cfg := valid()
		cfg.Env = "dev"
		cfg.JWTSecret = ""
		require.NoError(t, cfg.Validate())
	})

	t.Run("dev allows the log mailer", func(t *testing.T) {
		cfg := valid()
		cfg.Env = "dev"
		cfg.MailDriver = "log"
		require.NoError(t, cfg.Validate())
	})
}

func TestLoadConfig_MailDriverFollowsEnv(t *testing.T) {
	t.Setenv("MAIL_DRIVER", "")
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", strings.Repeat("x", 32))
	t.Setenv("SMTP_HOST", "")

	cfg := LoadConfig()
	require.Equal(t, "smtp", cfg.MailDriver)
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SMTP_HOST")

	t.Setenv("MAIL_DRIVER", "log")
	err = LoadConfig().Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MAIL_DRIVER=log")
}
