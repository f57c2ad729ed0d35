package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/stretchr/testify/require"
)

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, admin := e.newOrg(t, "Acme", 5)

	require.NoError(t, e.passwords.RequestReset(ctx, admin.Email))
	e.passwords.Wait()
	token := e.mailer.lastResetToken(t)
	require.Contains(t, e.mailer.resets[0].ResetURL, "http://app.test/reset-password?token=")

	_, err := e.passwords.ValidateResetToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, e.passwords.ResetPassword(ctx, token, "N3wPassword"))
	require.ErrorIs(t, e.passwords.ResetPassword(ctx, token, "Y3tAnother"), service.ErrInvalidToken)

	_, err = e.accounts.Login(ctx, admin.Email, testPassword, "")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = e.accounts.Login(ctx, admin.Email, "N3wPassword", "")
	require.NoError(t, err)
}

func TestPasswordReset_ExpiredTokenLeavesPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, admin := e.newOrg(t, "Acme", 5)

	require.NoError(t, e.passwords.RequestReset(ctx, admin.Email))
	e.passwords.Wait()
	token := e.mailer.lastResetToken(t)

	e.clock.Advance(31 * time.Minute)

	_, err := e.passwords.ValidateResetToken(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidToken)
	require.ErrorIs(t, e.passwords.ResetPassword(ctx, token, "N3wPassword"), service.ErrInvalidToken)

	_, err = e.accounts.Login(ctx, admin.Email, testPassword, "")
	require.NoError(t, err)
}

func TestPasswordReset_NoEnumeration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org, admin := e.newOrg(t, "Acme", 5)
	e.invite(t, org, admin, "pending@acme.test", "member")

	require.NoError(t, e.passwords.RequestReset(ctx, "nobody@acme.test"))
	require.NoError(t, e.passwords.RequestReset(ctx, "pending@acme.test"))
	require.NoError(t, e.passwords.RequestReset(ctx, "garbage"))
	e.passwords.Wait()
	require.Empty(t, e.mailer.resets)
}

func TestPasswordReset_NewRequestReplacesToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, admin := e.newOrg(t, "Acme", 5)

	require.NoError(t, e.passwords.RequestReset(ctx, admin.Email))
	e.passwords.Wait()
	first := e.mailer.lastResetToken(t)
	require.NoError(t, e.passwords.RequestReset(ctx, admin.Email))
	e.passwords.Wait()
	second := e.mailer.lastResetToken(t)

	_, err := e.passwords.ValidateResetToken(ctx, first)
	require.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = e.passwords.ValidateResetToken(ctx, second)
	require.NoError(t, err)
}

// slowMailer holds reset emails until released.
type slowMailer struct {
	*recordingMailer
	release chan struct{}
}

func (m *slowMailer) SendPasswordReset(ctx context.Context, msg domain.ResetMessage) error {
	select {
	case <-m.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return m.recordingMailer.SendPasswordReset(ctx, msg)
}

func TestPasswordReset_DoesNotWaitForMail(t *testing.T) {
	e := newEnv(t)
	_, admin := e.newOrg(t, "Acme", 5)

	slow := &slowMailer{recordingMailer: e.mailer, release: make(chan struct{})}
	e.passwords.Mailer = slow

	// A canceled request must not abort delivery.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.passwords.RequestReset(ctx, admin.Email))
	cancel()

	e.mailer.mu.Lock()
	require.Empty(t, e.mailer.resets)
	e.mailer.mu.Unlock()

	close(slow.release)
	e.passwords.Wait()
	require.NotEmpty(t, e.mailer.lastResetToken(t))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, admin := e.newOrg(t, "Acme", 5)

	require.ErrorIs(t, e.passwords.ChangePassword(ctx, admin.ID, "wrong", "N3wPassword"), service.ErrInvalidCredentials)
	require.NoError(t, e.passwords.ChangePassword(ctx, admin.ID, testPassword, "N3wPassword"))

	_, err := e.accounts.Login(ctx, admin.Email, "N3wPassword", "")
	require.NoError(t, err)
}
