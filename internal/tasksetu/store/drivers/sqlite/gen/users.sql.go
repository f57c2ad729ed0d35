package gen

import (
	"context"
	"database/sql"
)

const userColumns = `id, email, first_name, last_name, password_hash, role, organization_id, status,
       email_verified, invited_by, invite_token_hash, invite_expires_at, reset_token_hash,
       reset_expires_at, verify_token_hash, verify_expires_at, mfa_secret, mfa_enabled_at,
       last_login_at, created_at, updated_at`

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.PasswordHash,
		&i.Role,
		&i.OrganizationID,
		&i.Status,
		&i.EmailVerified,
		&i.InvitedBy,
		&i.InviteTokenHash,
		&i.InviteExpiresAt,
		&i.ResetTokenHash,
		&i.ResetExpiresAt,
		&i.VerifyTokenHash,
		&i.VerifyExpiresAt,
		&i.MfaSecret,
		&i.MfaEnabledAt,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryUsers(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const createUser = `-- name: CreateUser :exec
INSERT INTO users (
    id, email, first_name, last_name, password_hash, role, organization_id, status,
    email_verified, invited_by, invite_token_hash, invite_expires_at,
    verify_token_hash, verify_expires_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateUserParams struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	PasswordHash    sql.NullString
	Role            string
	OrganizationID  sql.NullString
	Status          string
	EmailVerified   bool
	InvitedBy       sql.NullString
	InviteTokenHash sql.NullString
	InviteExpiresAt sql.NullInt64
	VerifyTokenHash sql.NullString
	VerifyExpiresAt sql.NullInt64
	CreatedAt       int64
	UpdatedAt       int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.FirstName,
		arg.LastName,
		arg.PasswordHash,
		arg.Role,
		arg.OrganizationID,
		arg.Status,
		arg.EmailVerified,
		arg.InvitedBy,
		arg.InviteTokenHash,
		arg.InviteExpiresAt,
		arg.VerifyTokenHash,
		arg.VerifyExpiresAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deletePendingUser = `-- name: DeletePendingUser :execrows
DELETE FROM users WHERE id = ? AND organization_id = ? AND status = 'invited'
`

func (q *Queries) DeletePendingUser(ctx context.Context, id, organizationID string) (int64, error) {
	return q.execRows(ctx, deletePendingUser, id, organizationID)
}

const listUsersByOrganization = `-- name: ListUsersByOrganization :many
SELECT ` + userColumns + ` FROM users WHERE organization_id = ? ORDER BY created_at, id
`

func (q *Queries) ListUsersByOrganization(ctx context.Context, organizationID string) ([]User, error) {
	return q.queryUsers(ctx, listUsersByOrganization, organizationID)
}

const countSeats = `-- name: CountSeats :one
SELECT
    COALESCE(SUM(status = 'active'), 0) AS active,
    COALESCE(SUM(status = 'invited' AND invite_expires_at > ?), 0) AS pending
FROM users
WHERE organization_id = ?
`

type CountSeatsRow struct {
	Active  int64
	Pending int64
}

func (q *Queries) CountSeats(ctx context.Context, now int64, organizationID string) (CountSeatsRow, error) {
	var i CountSeatsRow
	err := q.db.QueryRowContext(ctx, countSeats, now, organizationID).Scan(&i.Active, &i.Pending)
	return i, err
}

const countActiveUsersByRole = `-- name: CountActiveUsersByRole :one
SELECT COUNT(*) FROM users WHERE organization_id = ? AND role = ? AND status = 'active'
`

func (q *Queries) CountActiveUsersByRole(ctx context.Context, organizationID, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveUsersByRole, organizationID, role).Scan(&count)
	return count, err
}

const countUsersByRole = `-- name: CountUsersByRole :one
SELECT COUNT(*) FROM users WHERE role = ?
`

func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByRole, role).Scan(&count)
	return count, err
}

const updateUserPasswordHash = `-- name: UpdateUserPasswordHash :execrows
UPDATE users SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
WHERE id = ? AND status <> 'invited'
`

func (q *Queries) UpdateUserPasswordHash(ctx context.Context, passwordHash string, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, updateUserPasswordHash, passwordHash, updatedAt, id)
}

const setUserStatus = `-- name: SetUserStatus :execrows
UPDATE users SET status = ?, updated_at = ? WHERE id = ? AND status IN ('active', 'inactive')
`

func (q *Queries) SetUserStatus(ctx context.Context, status string, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, setUserStatus, status, updatedAt, id)
}

const setUserRole = `-- name: SetUserRole :execrows
UPDATE users SET role = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) SetUserRole(ctx context.Context, role string, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, setUserRole, role, updatedAt, id)
}

const touchUserLastLogin = `-- name: TouchUserLastLogin :execrows
UPDATE users SET last_login_at = ? WHERE id = ?
`

func (q *Queries) TouchUserLastLogin(ctx context.Context, lastLoginAt int64, id string) (int64, error) {
	return q.execRows(ctx, touchUserLastLogin, lastLoginAt, id)
}

const setUserInviteToken = `-- name: SetUserInviteToken :execrows
UPDATE users SET invite_token_hash = ?, invite_expires_at = ?, updated_at = ?
WHERE id = ? AND status = 'invited'
`

func (q *Queries) SetUserInviteToken(ctx context.Context, tokenHash string, expiresAt, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, setUserInviteToken, tokenHash, expiresAt, updatedAt, id)
}

const getPendingUserByInviteHash = `-- name: GetPendingUserByInviteHash :one
SELECT ` + userColumns + ` FROM users
WHERE invite_token_hash = ? AND status = 'invited' AND invite_expires_at > ?
`

func (q *Queries) GetPendingUserByInviteHash(ctx context.Context, tokenHash string, now int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getPendingUserByInviteHash, tokenHash, now))
}

const acceptInvite = `-- name: AcceptInvite :one
UPDATE users
SET password_hash     = ?,
    first_name        = COALESCE(NULLIF(?, ''), first_name),
    last_name         = COALESCE(NULLIF(?, ''), last_name),
    status            = 'active',
    email_verified    = 1,
    invite_token_hash = NULL,
    invite_expires_at = NULL,
    updated_at        = ?
WHERE invite_token_hash = ? AND status = 'invited' AND invite_expires_at > ?
RETURNING ` + userColumns + `
`

type AcceptInviteParams struct {
	PasswordHash string
	FirstName    string
	LastName     string
	Now          int64
	TokenHash    string
}

func (q *Queries) AcceptInvite(ctx context.Context, arg AcceptInviteParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, acceptInvite,
		arg.PasswordHash,
		arg.FirstName,
		arg.LastName,
		arg.Now,
		arg.TokenHash,
		arg.Now,
	))
}

const setUserResetToken = `-- name: SetUserResetToken :execrows
UPDATE users SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ?
WHERE id = ? AND status = 'active'
`

func (q *Queries) SetUserResetToken(ctx context.Context, tokenHash string, expiresAt, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, setUserResetToken, tokenHash, expiresAt, updatedAt, id)
}

const getUserByResetHash = `-- name: GetUserByResetHash :one
SELECT ` + userColumns + ` FROM users
WHERE reset_token_hash = ? AND reset_expires_at > ? AND status = 'active'
`

func (q *Queries) GetUserByResetHash(ctx context.Context, tokenHash string, now int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByResetHash, tokenHash, now))
}

const consumeResetToken = `-- name: ConsumeResetToken :one
UPDATE users
SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
WHERE reset_token_hash = ? AND reset_expires_at > ? AND status = 'active'
RETURNING ` + userColumns + `
`

func (q *Queries) ConsumeResetToken(ctx context.Context, passwordHash string, now int64, tokenHash string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, consumeResetToken, passwordHash, now, tokenHash, now))
}

const setUserVerifyToken = `-- name: SetUserVerifyToken :execrows
UPDATE users SET verify_token_hash = ?, verify_expires_at = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) SetUserVerifyToken(ctx context.Context, tokenHash string, expiresAt, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, setUserVerifyToken, tokenHash, expiresAt, updatedAt, id)
}

const consumeVerifyToken = `-- name: ConsumeVerifyToken :one
UPDATE users
SET email_verified = 1, verify_token_hash = NULL, verify_expires_at = NULL, updated_at = ?
WHERE verify_token_hash = ? AND verify_expires_at > ?
RETURNING ` + userColumns + `
`

func (q *Queries) ConsumeVerifyToken(ctx context.Context, now int64, tokenHash string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, consumeVerifyToken, now, tokenHash, now))
}

const updateUserMFASecret = `-- name: UpdateUserMFASecret :execrows
UPDATE users SET mfa_secret = ?, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?
`

func (q *Queries) UpdateUserMFASecret(ctx context.Context, secret sql.NullString, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, updateUserMFASecret, secret, updatedAt, id)
}

const enableUserMFA = `-- name: EnableUserMFA :execrows
UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ? AND mfa_secret IS NOT NULL
`

func (q *Queries) EnableUserMFA(ctx context.Context, now int64, id string) (int64, error) {
	return q.execRows(ctx, enableUserMFA, now, now, id)
}

const disableUserMFA = `-- name: DisableUserMFA :execrows
UPDATE users SET mfa_secret = NULL, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?
`

func (q *Queries) DisableUserMFA(ctx context.Context, updatedAt int64, id string) (int64, error) {
	return q.execRows(ctx, disableUserMFA, updatedAt, id)
}

const clearExpiredResetTokens = `-- name: ClearExpiredResetTokens :execrows
UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL
WHERE reset_token_hash IS NOT NULL AND reset_expires_at <= ?
`

func (q *Queries) ClearExpiredResetTokens(ctx context.Context, now int64) (int64, error) {
	return q.execRows(ctx, clearExpiredResetTokens, now)
}

const clearExpiredVerifyTokens = `-- name: ClearExpiredVerifyTokens :execrows
UPDATE users SET verify_token_hash = NULL, verify_expires_at = NULL
WHERE verify_token_hash IS NOT NULL AND verify_expires_at <= ?
`

func (q *Queries) ClearExpiredVerifyTokens(ctx context.Context, now int64) (int64, error) {
	return q.execRows(ctx, clearExpiredVerifyTokens, now)
}

const deleteExpiredInvites = `-- name: DeleteExpiredInvites :execrows
DELETE FROM users WHERE status = 'invited' AND invite_expires_at <= ?
`

func (q *Queries) DeleteExpiredInvites(ctx context.Context, before int64) (int64, error) {
	return q.execRows(ctx, deleteExpiredInvites, before)
}
