package http

import (
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

func toUser(u domain.User) tasksdk.User {
	return tasksdk.User{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role.String(),
		OrganizationID: u.OrganizationID,
		Status:         string(u.Status),
		IsActive:       u.IsActive(),
		EmailVerified:  u.EmailVerified,
		MFAEnabled:     u.MFAEnabled(),
		InvitedBy:      u.InvitedBy,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

func toMember(m domain.Member) tasksdk.Member {
	out := tasksdk.Member{User: toUser(m.User), InviteExpired: m.InviteExpired}
	if m.IsPending() {
		out.InviteExpiresAt = m.InviteExpiresAt
	}
	return out
}

func toOrganization(o domain.Organization) tasksdk.Organization {
	return tasksdk.Organization{
		ID:     o.ID,
		Name:   o.Name,
		Slug:   o.Slug,
		Type:   string(o.Type),
		Status: string(o.Status),
		Settings: tasksdk.OrganizationSettings{
			AllowPublicSignup:        o.Settings.AllowPublicSignup,
			RequireEmailVerification: o.Settings.RequireEmailVerification,
		},
		LicenseSeats: o.LicenseSeats,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toOrganizations(orgs []domain.Organization) []tasksdk.Organization {
	out := make([]tasksdk.Organization, len(orgs))
	for i, o := range orgs {
		out[i] = toOrganization(o)
	}
	return out
}

func toLicense(l domain.License) tasksdk.License {
	return tasksdk.License{
		Total:     l.Total,
		Active:    l.Active,
		Pending:   l.Pending,
		Used:      l.Used,
		Available: l.Available,
	}
}

func toPendingInvite(pm domain.PendingMembership) tasksdk.PendingInvite {
	out := tasksdk.PendingInvite{
		Email:            pm.User.Email,
		Role:             pm.User.Role.String(),
		OrganizationID:   pm.Organization.ID,
		OrganizationName: pm.Organization.Name,
	}
	if pm.User.InviteExpiresAt != nil {
		out.ExpiresAt = *pm.User.InviteExpiresAt
	}
	return out
}
