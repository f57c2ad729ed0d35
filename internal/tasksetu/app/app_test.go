package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplication_ServesHealthAndShutsDown(t *testing.T) {
	cfg := Config{
		JWTTTL:               time.Hour,
		JWTIssuer:            "tasksetu-test",
		StoreDriver:          "sqlite",
		DatabaseFile:         filepath.Join(t.TempDir(), "tasksetu.db"),
		AppBaseURL:           "http://app.test",
		InviteTTL:            time.Hour,
		ResetTTL:             time.Hour,
		VerifyTTL:            time.Hour,
		BcryptCost:           MinBcryptCost,
		MailDriver:           "log",
		Env:                  "dev",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	app, err := New(cfg)
	require.NoError(t, err)

	for _, path := range []string{"/livez", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	app.housekeepingService.Start()
	require.NoError(t, app.Shutdown())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Env: "prod", StoreDriver: "sqlite", MailDriver: "log"})
	require.ErrorContains(t, err, "invalid configuration")
}
