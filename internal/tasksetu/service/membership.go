package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// MaxBatchInvites bounds a single InviteBatch call.
const MaxBatchInvites = 100

// MembershipService runs the invitation lifecycle and member administration.
//
//	(none) --Invite--> invited --AcceptInvite--> active <--Deactivate/Reactivate--> inactive
//	                   invited --RevokeInvite--> (none)
type MembershipService struct {
	Store     store.Store
	Mailer    Mailer
	Metrics   *metrics.Metrics
	Links     Links
	InviteTTL time.Duration
	Clock     Clock
}

type InviteInput struct {
	Email          string
	Role           string
	Roles          []string
	OrganizationID string
	InvitedBy      string
}

// InviteSpec is one entry of a batch.
type InviteSpec struct {
	Email string
	Role  string
	Roles []string
}

type InviteFailure struct {
	Email string
	Err   error
}

// BatchResult reports each entry of a batch separately; one failure does
// not stop the rest.
type BatchResult struct {
	SuccessCount int
	Invited      []domain.PendingMembership
	Errors       []InviteFailure
}

type AcceptInviteInput struct {
	Token     string
	Password  string
	FirstName string
	LastName  string
}

// Invite reserves a seat with a pending membership and emails the token.
func (s *MembershipService) Invite(ctx context.Context, in InviteInput) (domain.PendingMembership, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Validate the request.
	if in.OrganizationID == "" {
		return domain.PendingMembership{}, ErrIndividualNotAllowed
	}
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		s.Metrics.Invitation(metrics.InviteRejected)
		return domain.PendingMembership{}, err
	}
	role, err := inviteRole(in.Role, in.Roles)
	if err != nil {
		s.Metrics.Invitation(metrics.InviteRejected)
		return domain.PendingMembership{}, err
	}

	// 2. The organization must accept members.
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, in.OrganizationID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PendingMembership{}, ErrOrganizationNotFound
	}
	if err != nil {
		log.Error("failed to load organization", slog.Any("error", err))
		return domain.PendingMembership{}, err
	}
	if org.Suspended() {
		return domain.PendingMembership{}, ErrOrganizationSuspended
	}

	// 3. Token.
	raw, tokenHash, err := newLinkToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return domain.PendingMembership{}, err
	}
	expires := now.Add(ttlOrDefault(s.InviteTTL, DefaultInviteTTL))

	pending := domain.User{
		ID:              idx.NewAt(now).String(),
		Email:           email,
		Role:            role,
		OrganizationID:  org.ID,
		Status:          domain.StatusInvited,
		InvitedBy:       in.InvitedBy,
		InviteTokenHash: tokenHash,
		InviteExpiresAt: &expires,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// 4. Uniqueness, seat check and insert in one transaction so two
	// concurrent invites cannot both take the last seat.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByEmail(ctx, email)
		switch {
		case err == nil && existing.OrganizationID == org.ID:
			return ErrAlreadyMember
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		active, invited, err := tx.Users().CountSeats(ctx, org.ID, now)
		if err != nil {
			return err
		}
		if !domain.NewLicense(org.LicenseSeats, active, invited).HasSeat() {
			return ErrSeatLimitReached
		}

		if err := tx.Users().CreateUser(ctx, pending); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrSeatLimitReached):
		log.Info("invite refused, no seats", slog.String("organization_id", org.ID))
		s.Metrics.Invitation(metrics.InviteNoSeat)
		return domain.PendingMembership{}, err
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrEmailTaken):
		log.Info("invite refused", slog.String("organization_id", org.ID), slog.Any("reason", err))
		s.Metrics.Invitation(metrics.InviteRejected)
		return domain.PendingMembership{}, err
	case err != nil:
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.PendingMembership{}, err
	}

	log.Info("user invited",
		slog.String("user_id", pending.ID),
		slog.String("organization_id", org.ID),
		slog.String("role", role.String()),
		slog.Time("expires_at", expires),
	)
	s.Metrics.Invitation(metrics.InviteCreated)
	s.sendInvite(ctx, org, pending, raw)

	return domain.PendingMembership{User: pending, Organization: org}, nil
}

// InviteBatch invites each entry in order. Seats are checked per entry,
// so a batch larger than the free seats partially succeeds.
func (s *MembershipService) InviteBatch(ctx context.Context, orgID, invitedBy string, specs []InviteSpec) (BatchResult, error) {
	if len(specs) == 0 || len(specs) > MaxBatchInvites {
		return BatchResult{}, ErrInvalidRequest
	}

	res := BatchResult{Invited: []domain.PendingMembership{}, Errors: []InviteFailure{}}
	for _, spec := range specs {
		pm, err := s.Invite(ctx, InviteInput{
			Email:          spec.Email,
			Role:           spec.Role,
			Roles:          spec.Roles,
			OrganizationID: orgID,
			InvitedBy:      invitedBy,
		})
		if err != nil {
			if isFatal(err) {
				return res, err
			}
			res.Errors = append(res.Errors, InviteFailure{Email: spec.Email, Err: err})
			continue
		}
		res.SuccessCount++
		res.Invited = append(res.Invited, pm)
	}

	slogx.FromContext(ctx).Info("batch invite processed",
		slog.String("organization_id", orgID),
		slog.Int("requested", len(specs)),
		slog.Int("invited", res.SuccessCount),
	)
	return res, nil
}

// isFatal reports errors that apply to the whole batch rather than one entry.
func isFatal(err error) bool {
	return errors.Is(err, ErrOrganizationNotFound) ||
		errors.Is(err, ErrOrganizationSuspended) ||
		errors.Is(err, ErrIndividualNotAllowed)
}

// ResolveInviteToken returns the pending membership an unexpired token
// points at.
func (s *MembershipService) ResolveInviteToken(ctx context.Context, token string) (domain.PendingMembership, error) {
	if token == "" {
		return domain.PendingMembership{}, ErrInvalidToken
	}
	u, err := s.Store.Users().GetPendingByInviteHash(ctx, cryptox.FingerprintToken(token), s.Clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("invite lookup with invalid or expired token")
		return domain.PendingMembership{}, ErrInvalidToken
	}
	if err != nil {
		return domain.PendingMembership{}, err
	}
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, u.OrganizationID)
	if err != nil {
		return domain.PendingMembership{}, err
	}
	return domain.PendingMembership{User: u, Organization: org}, nil
}

// AcceptInvite sets the password and activates the membership. The store
// performs a single conditional write, so of two concurrent calls with the
// same token exactly one succeeds.
func (s *MembershipService) AcceptInvite(ctx context.Context, in AcceptInviteInput) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Validate input.
	if err := domain.ValidatePassword(in.Password); err != nil {
		return domain.User{}, err
	}
	first, err := domain.NormalizeName(in.FirstName)
	if err != nil {
		return domain.User{}, err
	}
	last, err := domain.NormalizeName(in.LastName)
	if err != nil {
		return domain.User{}, err
	}

	// 2. Fail fast before paying for bcrypt.
	if _, err := s.ResolveInviteToken(ctx, in.Token); err != nil {
		return domain.User{}, err
	}

	// 3. Hash and activate.
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}
	u, err := s.Store.Users().AcceptInvite(ctx, store.AcceptInvite{
		TokenHash:    cryptox.FingerprintToken(in.Token),
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
	}, now)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("invite already used or expired")
		return domain.User{}, ErrInvalidToken
	}
	if err != nil {
		log.Error("failed to accept invite", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("invitation accepted",
		slog.String("user_id", u.ID),
		slog.String("organization_id", u.OrganizationID),
	)
	s.Metrics.Invitation(metrics.InviteAccepted)
	return u, nil
}

// ResendInvite issues a new token, which invalidates the previous one. An
// invitation that already expired has released its seat, so the seat is
// checked again.
func (s *MembershipService) ResendInvite(ctx context.Context, orgID, userID string) (domain.PendingMembership, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	org, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PendingMembership{}, ErrOrganizationNotFound
	}
	if err != nil {
		return domain.PendingMembership{}, err
	}

	raw, tokenHash, err := newLinkToken()
	if err != nil {
		return domain.PendingMembership{}, err
	}
	expires := now.Add(ttlOrDefault(s.InviteTTL, DefaultInviteTTL))

	var u domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = memberOf(ctx, tx.Users(), orgID, userID)
		if err != nil {
			return err
		}
		if !u.IsPending() {
			return ErrNotPending
		}
		if u.InviteExpired(now) {
			active, invited, err := tx.Users().CountSeats(ctx, orgID, now)
			if err != nil {
				return err
			}
			if !domain.NewLicense(org.LicenseSeats, active, invited).HasSeat() {
				return ErrSeatLimitReached
			}
		}
		return tx.Users().SetInviteToken(ctx, u.ID, tokenHash, expires, now)
	})
	if err != nil {
		log.Info("resend invite failed", slog.String("user_id", userID), slog.Any("reason", err))
		return domain.PendingMembership{}, err
	}

	u.InviteTokenHash = tokenHash
	u.InviteExpiresAt = &expires
	u.UpdatedAt = now

	log.Info("invitation resent", slog.String("user_id", u.ID), slog.Time("expires_at", expires))
	s.Metrics.Invitation(metrics.InviteResent)
	s.sendInvite(ctx, org, u, raw)
	return domain.PendingMembership{User: u, Organization: org}, nil
}

// RevokeInvite deletes a pending membership and frees its seat.
func (s *MembershipService) RevokeInvite(ctx context.Context, orgID, userID string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.Users().DeletePendingUser(ctx, orgID, userID)
	if errors.Is(err, store.ErrNotFound) {
		if _, lookupErr := memberOf(ctx, s.Store.Users(), orgID, userID); lookupErr != nil {
			return lookupErr
		}
		return ErrNotPending
	}
	if err != nil {
		log.Error("failed to revoke invite", slog.Any("error", err))
		return err
	}

	log.Info("invitation revoked", slog.String("user_id", userID), slog.String("organization_id", orgID))
	s.Metrics.Invitation(metrics.InviteRevoked)
	return nil
}

// Deactivate blocks a member. It is refused when it would leave the
// organization without an active org_admin.
func (s *MembershipService) Deactivate(ctx context.Context, orgID, actorID, userID string) (domain.User, error) {
	now := s.Clock.Now()
	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = memberOf(ctx, tx.Users(), orgID, userID)
		if err != nil {
			return err
		}
		switch u.Status {
		case domain.StatusInvited:
			return ErrUserPending
		case domain.StatusInactive:
			return nil
		}
		if u.Role == domain.RoleOrgAdmin {
			if err := ensureAnotherAdmin(ctx, tx.Users(), orgID); err != nil {
				return err
			}
		}
		if err := tx.Users().SetStatus(ctx, u.ID, domain.StatusInactive, now); err != nil {
			return err
		}
		u.Status = domain.StatusInactive
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Info("deactivation refused", slog.String("user_id", userID), slog.Any("reason", err))
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user deactivated",
		slog.String("user_id", u.ID),
		slog.String("actor_id", actorID),
		slog.String("organization_id", orgID),
	)
	return u, nil
}

// Reactivate restores an inactive member if a seat is available.
func (s *MembershipService) Reactivate(ctx context.Context, orgID, userID string) (domain.User, error) {
	now := s.Clock.Now()
	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, orgID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		if err != nil {
			return err
		}
		u, err = memberOf(ctx, tx.Users(), orgID, userID)
		if err != nil {
			return err
		}
		switch u.Status {
		case domain.StatusInvited:
			return ErrUserPending
		case domain.StatusActive:
			return nil
		}
		active, invited, err := tx.Users().CountSeats(ctx, orgID, now)
		if err != nil {
			return err
		}
		if !domain.NewLicense(org.LicenseSeats, active, invited).HasSeat() {
			return ErrSeatLimitReached
		}
		if err := tx.Users().SetStatus(ctx, u.ID, domain.StatusActive, now); err != nil {
			return err
		}
		u.Status = domain.StatusActive
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Info("reactivation refused", slog.String("user_id", userID), slog.Any("reason", err))
		return domain.User{}, err
	}
	slogx.FromContext(ctx).Info("user reactivated", slog.String("user_id", u.ID), slog.String("organization_id", orgID))
	return u, nil
}

// ChangeRole switches a member between org_admin and member. Demoting the
// last active org_admin is refused.
func (s *MembershipService) ChangeRole(ctx context.Context, orgID, userID, role string) (domain.User, error) {
	next, err := domain.ParseRole(role)
	if err != nil || !next.Invitable() {
		return domain.User{}, ErrInvalidRole
	}

	now := s.Clock.Now()
	var u domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = memberOf(ctx, tx.Users(), orgID, userID)
		if err != nil {
			return err
		}
		if u.Role == next {
			return nil
		}
		if u.Role == domain.RoleOrgAdmin && u.IsActive() {
			if err := ensureAnotherAdmin(ctx, tx.Users(), orgID); err != nil {
				return err
			}
		}
		if err := tx.Users().SetRole(ctx, u.ID, next, now); err != nil {
			return err
		}
		u.Role = next
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Info("role change refused", slog.String("user_id", userID), slog.Any("reason", err))
		return domain.User{}, err
	}
	slogx.FromContext(ctx).Info("role changed", slog.String("user_id", u.ID), slog.String("role", next.String()))
	return u, nil
}

// ListMembers returns every user of the organization, pending ones
// included, flagged when their invitation has expired.
func (s *MembershipService) ListMembers(ctx context.Context, orgID string) ([]domain.Member, error) {
	users, err := s.Store.Users().ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	out := make([]domain.Member, 0, len(users))
	for _, u := range users {
		out = append(out, domain.Member{User: u, InviteExpired: u.InviteExpired(now)})
	}
	return out, nil
}

func (s *MembershipService) sendInvite(ctx context.Context, org domain.Organization, u domain.User, token string) {
	if s.Mailer == nil {
		return
	}
	inviter := ""
	if u.InvitedBy != "" {
		if by, err := s.Store.Users().GetUserByID(ctx, u.InvitedBy); err == nil {
			inviter = by.FullName()
			if inviter == "" {
				inviter = by.Email
			}
		}
	}
	deliver(ctx, s.Metrics, metrics.MailInvite, func() error {
		return s.Mailer.SendInvite(ctx, domain.InviteMessage{
			To:               u.Email,
			OrganizationName: org.Name,
			InviterName:      inviter,
			Role:             u.Role,
			AcceptURL:        s.Links.AcceptInvite(token),
			ExpiresAt:        *u.InviteExpiresAt,
		})
	})
}

// inviteRole resolves role and roles to one invitable role.
func inviteRole(role string, roles []string) (domain.Role, error) {
	r, err := domain.ResolveRole(role, roles)
	if errors.Is(err, domain.ErrAmbiguousRole) {
		return "", err
	}
	if err != nil || !r.Invitable() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// memberOf loads a user and hides users of other organizations.
func memberOf(ctx context.Context, users store.Users, orgID, userID string) (domain.User, error) {
	u, err := users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && u.OrganizationID != orgID) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// ensureAnotherAdmin fails with ErrLastAdmin unless at least two active
// org_admins exist, one of whom is about to lose the role.
func ensureAnotherAdmin(ctx context.Context, users store.Users, orgID string) error {
	n, err := users.CountActiveByRole(ctx, orgID, domain.RoleOrgAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
