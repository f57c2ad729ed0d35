package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// TenantService is the organization directory.
type TenantService struct {
	Store store.Store

	// DefaultSeats is granted to self-registered organizations.
	DefaultSeats int

	Clock Clock
}

// RegisterOrganizationInput creates a tenant and its first admin.
type RegisterOrganizationInput struct {
	Name           string
	Slug           string // derived from Name when empty
	Type           string
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
}

// SettingsPatch updates only the non-nil switches.
type SettingsPatch struct {
	AllowPublicSignup        *bool
	RequireEmailVerification *bool
}

// RegisterOrganization creates the organization and its first org_admin
// in one transaction. The admin is active and verified.
func (s *TenantService) RegisterOrganization(ctx context.Context, in RegisterOrganizationInput) (domain.Organization, domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Organization fields.
	name, err := domain.ValidateOrganizationName(in.Name)
	if err != nil {
		return domain.Organization{}, domain.User{}, err
	}
	slug := in.Slug
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if err := domain.ValidateSlug(slug); err != nil {
		return domain.Organization{}, domain.User{}, err
	}
	typ, err := domain.ParseOrganizationType(in.Type)
	if err != nil {
		return domain.Organization{}, domain.User{}, err
	}

	// 2. Admin fields.
	admin, password, err := newAccount(RegisterInput{
		Email:     in.AdminEmail,
		Password:  in.AdminPassword,
		FirstName: in.AdminFirstName,
		LastName:  in.AdminLastName,
	})
	if err != nil {
		return domain.Organization{}, domain.User{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash admin password", slog.Any("error", err))
		return domain.Organization{}, domain.User{}, err
	}

	seats := s.DefaultSeats
	if seats <= 0 {
		seats = domain.DefaultLicenseSeats
	}
	org := domain.Organization{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Slug:         slug,
		Type:         typ,
		Status:       domain.OrgStatusActive,
		LicenseSeats: seats,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	admin.ID = idx.NewAt(now).String()
	admin.PasswordHash = hash
	admin.Role = domain.RoleOrgAdmin
	admin.OrganizationID = org.ID
	admin.Status = domain.StatusActive
	admin.EmailVerified = true
	admin.CreatedAt = now
	admin.UpdatedAt = now

	// 3. Both records or neither.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrEmailTaken):
		log.Info("organization registration rejected", slog.String("slug", slug), slog.Any("reason", err))
		return domain.Organization{}, domain.User{}, err
	case err != nil:
		log.Error("failed to register organization", slog.Any("error", err))
		return domain.Organization{}, domain.User{}, err
	}

	log.Info("organization registered",
		slog.String("organization_id", org.ID),
		slog.String("slug", org.Slug),
		slog.String("admin_id", admin.ID),
	)
	return org, admin, nil
}

func (s *TenantService) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Organization{}, ErrOrganizationNotFound
	}
	return org, err
}

func (s *TenantService) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	org, err := s.Store.Organizations().GetOrganizationBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Organization{}, ErrOrganizationNotFound
	}
	return org, err
}

// ListOrganizations returns every tenant. Super-admin only.
func (s *TenantService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return s.Store.Organizations().ListOrganizations(ctx)
}

// UpdateSettings applies patch and returns the stored organization.
func (s *TenantService) UpdateSettings(ctx context.Context, orgID string, patch SettingsPatch) (domain.Organization, error) {
	now := s.Clock.Now()
	var out domain.Organization
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			return err
		}
		if patch.AllowPublicSignup != nil {
			org.Settings.AllowPublicSignup = *patch.AllowPublicSignup
		}
		if patch.RequireEmailVerification != nil {
			org.Settings.RequireEmailVerification = *patch.RequireEmailVerification
		}
		if err := tx.Organizations().UpdateSettings(ctx, orgID, org.Settings, now); err != nil {
			return err
		}
		org.UpdatedAt = now
		out = org
		return nil
	})
	if err != nil {
		return domain.Organization{}, s.notFound(err)
	}
	slogx.FromContext(ctx).Info("organization settings updated",
		slog.String("organization_id", orgID),
		slog.Bool("allow_public_signup", out.Settings.AllowPublicSignup),
		slog.Bool("require_email_verification", out.Settings.RequireEmailVerification),
	)
	return out, nil
}

// UpdateProfile changes the display name and type. Empty values keep the
// current ones. The slug never changes.
func (s *TenantService) UpdateProfile(ctx context.Context, orgID, name, typ string) (domain.Organization, error) {
	now := s.Clock.Now()
	var out domain.Organization
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			return err
		}
		if name != "" {
			if org.Name, err = domain.ValidateOrganizationName(name); err != nil {
				return err
			}
		}
		if typ != "" {
			if org.Type, err = domain.ParseOrganizationType(typ); err != nil {
				return err
			}
		}
		if err := tx.Organizations().UpdateProfile(ctx, orgID, org.Name, org.Type, now); err != nil {
			return err
		}
		org.UpdatedAt = now
		out = org
		return nil
	})
	if err != nil {
		return domain.Organization{}, s.notFound(err)
	}
	slogx.FromContext(ctx).Info("organization profile updated", slog.String("organization_id", orgID))
	return out, nil
}

// SetLicenseSeats changes the seat total. Reducing it below the current
// usage is allowed; no new seats are handed out until usage drops.
func (s *TenantService) SetLicenseSeats(ctx context.Context, orgID string, seats int) (domain.Organization, error) {
	if seats < 0 || seats > domain.MaxLicenseSeats {
		return domain.Organization{}, domain.ErrInvalidSeatCount
	}
	now := s.Clock.Now()
	if err := s.Store.Organizations().SetLicenseSeats(ctx, orgID, seats, now); err != nil {
		return domain.Organization{}, s.notFound(err)
	}
	slogx.FromContext(ctx).Info("license seats changed",
		slog.String("organization_id", orgID),
		slog.Int("seats", seats),
	)
	return s.GetOrganization(ctx, orgID)
}

// SetStatus suspends or reactivates a tenant. Suspension locks every
// member out on their next request.
func (s *TenantService) SetStatus(ctx context.Context, orgID, status string) (domain.Organization, error) {
	st, err := domain.ParseOrganizationStatus(status)
	if err != nil {
		return domain.Organization{}, err
	}
	if err := s.Store.Organizations().SetStatus(ctx, orgID, st, s.Clock.Now()); err != nil {
		return domain.Organization{}, s.notFound(err)
	}
	slogx.FromContext(ctx).Info("organization status changed",
		slog.String("organization_id", orgID),
		slog.String("status", string(st)),
	)
	return s.GetOrganization(ctx, orgID)
}

// License reports seat usage. Expired invitations do not hold seats.
func (s *TenantService) License(ctx context.Context, orgID string) (domain.License, error) {
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return domain.License{}, err
	}
	active, pending, err := s.Store.Users().CountSeats(ctx, orgID, s.Clock.Now())
	if err != nil {
		return domain.License{}, err
	}
	return domain.NewLicense(org.LicenseSeats, active, pending), nil
}

func (s *TenantService) notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrganizationNotFound
	}
	return err
}
