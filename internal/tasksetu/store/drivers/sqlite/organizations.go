package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite/gen"
)

type organizationsRepo struct {
	q *gen.Queries
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	err := r.q.CreateOrganization(ctx, gen.CreateOrganizationParams{
		ID:                       o.ID,
		Name:                     o.Name,
		Slug:                     o.Slug,
		Type:                     string(o.Type),
		Status:                   string(o.Status),
		AllowPublicSignup:        o.Settings.AllowPublicSignup,
		RequireEmailVerification: o.Settings.RequireEmailVerification,
		LicenseSeats:             int64(o.LicenseSeats),
		CreatedAt:                millis(o.CreatedAt),
		UpdatedAt:                millis(o.UpdatedAt),
	})
	return mapUnique(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	row, err := r.q.GetOrganizationByID(ctx, id)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return mapOrganization(row), nil
}

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	row, err := r.q.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return mapOrganization(row), nil
}

func (r *organizationsRepo) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.q.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Organization, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapOrganization(row))
	}
	return out, nil
}

func (r *organizationsRepo) UpdateSettings(ctx context.Context, id string, s domain.OrganizationSettings, now time.Time) error {
	return requireRow(r.q.UpdateOrganizationSettings(ctx, gen.UpdateOrganizationSettingsParams{
		AllowPublicSignup:        s.AllowPublicSignup,
		RequireEmailVerification: s.RequireEmailVerification,
		UpdatedAt:                millis(now),
		ID:                       id,
	}))
}

func (r *organizationsRepo) UpdateProfile(ctx context.Context, id, name string, typ domain.OrganizationType, now time.Time) error {
	return requireRow(r.q.UpdateOrganizationProfile(ctx, gen.UpdateOrganizationProfileParams{
		Name:      name,
		Type:      string(typ),
		UpdatedAt: millis(now),
		ID:        id,
	}))
}

func (r *organizationsRepo) SetLicenseSeats(ctx context.Context, id string, seats int, now time.Time) error {
	return requireRow(r.q.SetOrganizationLicenseSeats(ctx, gen.SetOrganizationLicenseSeatsParams{
		LicenseSeats: int64(seats),
		UpdatedAt:    millis(now),
		ID:           id,
	}))
}

func (r *organizationsRepo) SetStatus(ctx context.Context, id string, status domain.OrganizationStatus, now time.Time) error {
	return requireRow(r.q.SetOrganizationStatus(ctx, gen.SetOrganizationStatusParams{
		Status:    string(status),
		UpdatedAt: millis(now),
		ID:        id,
	}))
}

func mapOrganization(row gen.Organization) domain.Organization {
	return domain.Organization{
		ID:     row.ID,
		Name:   row.Name,
		Slug:   row.Slug,
		Type:   domain.OrganizationType(row.Type),
		Status: domain.OrganizationStatus(row.Status),
		Settings: domain.OrganizationSettings{
			AllowPublicSignup:        row.AllowPublicSignup,
			RequireEmailVerification: row.RequireEmailVerification,
		},
		LicenseSeats: int(row.LicenseSeats),
		CreatedAt:    fromMillis(row.CreatedAt),
		UpdatedAt:    fromMillis(row.UpdatedAt),
	}
}
