package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PasswordHash:    nullString(u.PasswordHash),
		Role:            string(u.Role),
		OrganizationID:  nullString(u.OrganizationID),
		Status:          string(u.Status),
		EmailVerified:   u.EmailVerified,
		InvitedBy:       nullString(u.InvitedBy),
		InviteTokenHash: nullString(u.InviteTokenHash),
		InviteExpiresAt: nullMillis(u.InviteExpiresAt),
		VerifyTokenHash: nullString(u.VerifyTokenHash),
		VerifyExpiresAt: nullMillis(u.VerifyExpiresAt),
		CreatedAt:       millis(u.CreatedAt),
		UpdatedAt:       millis(u.UpdatedAt),
	})
	return mapUnique(err)
}

func (r *usersRepo) DeletePendingUser(ctx context.Context, orgID, userID string) error {
	return requireRow(r.q.DeletePendingUser(ctx, userID, orgID))
}

func (r *usersRepo) ListByOrganization(ctx context.Context, orgID string) ([]domain.User, error) {
	rows, err := r.q.ListUsersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapUser(row))
	}
	return out, nil
}

func (r *usersRepo) CountSeats(ctx context.Context, orgID string, now time.Time) (int, int, error) {
	row, err := r.q.CountSeats(ctx, millis(now), orgID)
	if err != nil {
		return 0, 0, err
	}
	return int(row.Active), int(row.Pending), nil
}

func (r *usersRepo) CountActiveByRole(ctx context.Context, orgID string, role domain.Role) (int, error) {
	n, err := r.q.CountActiveUsersByRole(ctx, orgID, string(role))
	return int(n), err
}

func (r *usersRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	n, err := r.q.CountUsersByRole(ctx, string(role))
	return int(n), err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return requireRow(r.q.UpdateUserPasswordHash(ctx, hash, millis(now), userID))
}

func (r *usersRepo) SetStatus(ctx context.Context, userID string, status domain.UserStatus, now time.Time) error {
	return requireRow(r.q.SetUserStatus(ctx, string(status), millis(now), userID))
}

func (r *usersRepo) SetRole(ctx context.Context, userID string, role domain.Role, now time.Time) error {
	return requireRow(r.q.SetUserRole(ctx, string(role), millis(now), userID))
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string, now time.Time) error {
	return requireRow(r.q.TouchUserLastLogin(ctx, millis(now), userID))
}

func (r *usersRepo) SetInviteToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	n, err := r.q.SetUserInviteToken(ctx, tokenHash, millis(expiresAt), millis(now), userID)
	return requireRow(n, mapUnique(err))
}

func (r *usersRepo) GetPendingByInviteHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	row, err := r.q.GetPendingUserByInviteHash(ctx, tokenHash, millis(now))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) AcceptInvite(ctx context.Context, in store.AcceptInvite, now time.Time) (domain.User, error) {
	row, err := r.q.AcceptInvite(ctx, gen.AcceptInviteParams{
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Now:          millis(now),
		TokenHash:    in.TokenHash,
	})
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	n, err := r.q.SetUserResetToken(ctx, tokenHash, millis(expiresAt), millis(now), userID)
	return requireRow(n, mapUnique(err))
}

func (r *usersRepo) GetUserByResetHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	row, err := r.q.GetUserByResetHash(ctx, tokenHash, millis(now))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	row, err := r.q.ConsumeResetToken(ctx, passwordHash, millis(now), tokenHash)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) SetVerifyToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	n, err := r.q.SetUserVerifyToken(ctx, tokenHash, millis(expiresAt), millis(now), userID)
	return requireRow(n, mapUnique(err))
}

func (r *usersRepo) ConsumeVerifyToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	row, err := r.q.ConsumeVerifyToken(ctx, millis(now), tokenHash)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string, now time.Time) error {
	return requireRow(r.q.UpdateUserMFASecret(ctx, nullString(secret), millis(now), userID))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, now time.Time) error {
	return requireRow(r.q.EnableUserMFA(ctx, millis(now), userID))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string, now time.Time) error {
	return requireRow(r.q.DisableUserMFA(ctx, millis(now), userID))
}

func (r *usersRepo) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	resets, err := r.q.ClearExpiredResetTokens(ctx, millis(now))
	if err != nil {
		return 0, err
	}
	verifies, err := r.q.ClearExpiredVerifyTokens(ctx, millis(now))
	if err != nil {
		return resets, err
	}
	return resets + verifies, nil
}

func (r *usersRepo) DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteExpiredInvites(ctx, millis(before))
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:              row.ID,
		Email:           row.Email,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		PasswordHash:    row.PasswordHash.String,
		Role:            domain.Role(row.Role),
		OrganizationID:  row.OrganizationID.String,
		Status:          domain.UserStatus(row.Status),
		EmailVerified:   row.EmailVerified,
		InvitedBy:       row.InvitedBy.String,
		InviteTokenHash: row.InviteTokenHash.String,
		InviteExpiresAt: timePtr(row.InviteExpiresAt),
		ResetTokenHash:  row.ResetTokenHash.String,
		ResetExpiresAt:  timePtr(row.ResetExpiresAt),
		VerifyTokenHash: row.VerifyTokenHash.String,
		VerifyExpiresAt: timePtr(row.VerifyExpiresAt),
		MFASecret:       stringPtr(row.MfaSecret),
		MFAEnabledAt:    timePtr(row.MfaEnabledAt),
		LastLoginAt:     timePtr(row.LastLoginAt),
		CreatedAt:       fromMillis(row.CreatedAt),
		UpdatedAt:       fromMillis(row.UpdatedAt),
	}
}
