package gen

import (
	"context"
)

const organizationColumns = `id, name, slug, type, status, allow_public_signup, require_email_verification,
       license_seats, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (Organization, error) {
	var i Organization
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.Type,
		&i.Status,
		&i.AllowPublicSignup,
		&i.RequireEmailVerification,
		&i.LicenseSeats,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrganization = `-- name: CreateOrganization :exec
INSERT INTO organizations (
    id, name, slug, type, status, allow_public_signup, require_email_verification,
    license_seats, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateOrganizationParams struct {
	ID                       string
	Name                     string
	Slug                     string
	Type                     string
	Status                   string
	AllowPublicSignup        bool
	RequireEmailVerification bool
	LicenseSeats             int64
	CreatedAt                int64
	UpdatedAt                int64
}

func (q *Queries) CreateOrganization(ctx context.Context, arg CreateOrganizationParams) error {
	_, err := q.db.ExecContext(ctx, createOrganization,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Type,
		arg.Status,
		arg.AllowPublicSignup,
		arg.RequireEmailVerification,
		arg.LicenseSeats,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getOrganizationByID = `-- name: GetOrganizationByID :one
SELECT ` + organizationColumns + ` FROM organizations WHERE id = ?
`

func (q *Queries) GetOrganizationByID(ctx context.Context, id string) (Organization, error) {
	return scanOrganization(q.db.QueryRowContext(ctx, getOrganizationByID, id))
}

const getOrganizationBySlug = `-- name: GetOrganizationBySlug :one
SELECT ` + organizationColumns + ` FROM organizations WHERE slug = ?
`

func (q *Queries) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	return scanOrganization(q.db.QueryRowContext(ctx, getOrganizationBySlug, slug))
}

const listOrganizations = `-- name: ListOrganizations :many
SELECT ` + organizationColumns + ` FROM organizations ORDER BY created_at, id
`

func (q *Queries) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := q.db.QueryContext(ctx, listOrganizations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Organization
	for rows.Next() {
		i, err := scanOrganization(rows)
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

const updateOrganizationSettings = `-- name: UpdateOrganizationSettings :execrows
UPDATE organizations
SET allow_public_signup = ?, require_email_verification = ?, updated_at = ?
WHERE id = ?
`

type UpdateOrganizationSettingsParams struct {
	AllowPublicSignup        bool
	RequireEmailVerification bool
	UpdatedAt                int64
	ID                       string
}

func (q *Queries) UpdateOrganizationSettings(ctx context.Context, arg UpdateOrganizationSettingsParams) (int64, error) {
	return q.execRows(ctx, updateOrganizationSettings,
		arg.AllowPublicSignup,
		arg.RequireEmailVerification,
		arg.UpdatedAt,
		arg.ID,
	)
}

const updateOrganizationProfile = `-- name: UpdateOrganizationProfile :execrows
UPDATE organizations SET name = ?, type = ?, updated_at = ? WHERE id = ?
`

type UpdateOrganizationProfileParams struct {
	Name      string
	Type      string
	UpdatedAt int64
	ID        string
}

func (q *Queries) UpdateOrganizationProfile(ctx context.Context, arg UpdateOrganizationProfileParams) (int64, error) {
	return q.execRows(ctx, updateOrganizationProfile, arg.Name, arg.Type, arg.UpdatedAt, arg.ID)
}

const setOrganizationLicenseSeats = `-- name: SetOrganizationLicenseSeats :execrows
UPDATE organizations SET license_seats = ?, updated_at = ? WHERE id = ?
`

type SetOrganizationLicenseSeatsParams struct {
	LicenseSeats int64
	UpdatedAt    int64
	ID           string
}

func (q *Queries) SetOrganizationLicenseSeats(ctx context.Context, arg SetOrganizationLicenseSeatsParams) (int64, error) {
	return q.execRows(ctx, setOrganizationLicenseSeats, arg.LicenseSeats, arg.UpdatedAt, arg.ID)
}

const setOrganizationStatus = `-- name: SetOrganizationStatus :execrows
UPDATE organizations SET status = ?, updated_at = ? WHERE id = ?
`

type SetOrganizationStatusParams struct {
	Status    string
	UpdatedAt int64
	ID        string
}

func (q *Queries) SetOrganizationStatus(ctx context.Context, arg SetOrganizationStatusParams) (int64, error) {
	return q.execRows(ctx, setOrganizationStatus, arg.Status, arg.UpdatedAt, arg.ID)
}
