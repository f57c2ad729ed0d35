package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDoc omits empty token fields entirely so the sparse unique indexes
// only see live tokens.
type userDoc struct {
	ID             string `bson:"_id"`
	Email          string `bson:"email"`
	FirstName      string `bson:"first_name"`
	LastName       string `bson:"last_name"`
	PasswordHash   string `bson:"password_hash,omitempty"`
	Role           string `bson:"role"`
	OrganizationID string `bson:"organization_id,omitempty"`
	Status         string `bson:"status"`
	EmailVerified  bool   `bson:"email_verified"`
	InvitedBy      string `bson:"invited_by,omitempty"`

	InviteTokenHash string     `bson:"invite_token_hash,omitempty"`
	InviteExpiresAt *time.Time `bson:"invite_expires_at,omitempty"`
	ResetTokenHash  string     `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt  *time.Time `bson:"reset_expires_at,omitempty"`
	VerifyTokenHash string     `bson:"verify_token_hash,omitempty"`
	VerifyExpiresAt *time.Time `bson:"verify_expires_at,omitempty"`

	MFASecret    *string    `bson:"mfa_secret,omitempty"`
	MFAEnabledAt *time.Time `bson:"mfa_enabled_at,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func toUserDoc(u domain.User) userDoc {
	return userDoc{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PasswordHash:    u.PasswordHash,
		Role:            string(u.Role),
		OrganizationID:  u.OrganizationID,
		Status:          string(u.Status),
		EmailVerified:   u.EmailVerified,
		InvitedBy:       u.InvitedBy,
		InviteTokenHash: u.InviteTokenHash,
		InviteExpiresAt: utcPtr(u.InviteExpiresAt),
		ResetTokenHash:  u.ResetTokenHash,
		ResetExpiresAt:  utcPtr(u.ResetExpiresAt),
		VerifyTokenHash: u.VerifyTokenHash,
		VerifyExpiresAt: utcPtr(u.VerifyExpiresAt),
		MFASecret:       u.MFASecret,
		MFAEnabledAt:    utcPtr(u.MFAEnabledAt),
		LastLoginAt:     utcPtr(u.LastLoginAt),
		CreatedAt:       utc(u.CreatedAt),
		UpdatedAt:       utc(u.UpdatedAt),
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:              d.ID,
		Email:           d.Email,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		PasswordHash:    d.PasswordHash,
		Role:            domain.Role(d.Role),
		OrganizationID:  d.OrganizationID,
		Status:          domain.UserStatus(d.Status),
		EmailVerified:   d.EmailVerified,
		InvitedBy:       d.InvitedBy,
		InviteTokenHash: d.InviteTokenHash,
		InviteExpiresAt: utcPtr(d.InviteExpiresAt),
		ResetTokenHash:  d.ResetTokenHash,
		ResetExpiresAt:  utcPtr(d.ResetExpiresAt),
		VerifyTokenHash: d.VerifyTokenHash,
		VerifyExpiresAt: utcPtr(d.VerifyExpiresAt),
		MFASecret:       d.MFASecret,
		MFAEnabledAt:    utcPtr(d.MFAEnabledAt),
		LastLoginAt:     utcPtr(d.LastLoginAt),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

type usersRepo struct {
	c    *mongo.Collection
	orgs *mongo.Collection
	sess mongo.Session
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.c.FindOne(bind(ctx, r.sess), filter).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

// findAndUpdate applies update to the single document matching filter and
// returns it as written.
func (r *usersRepo) findAndUpdate(ctx context.Context, filter, update bson.M) (domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := r.c.FindOneAndUpdate(bind(ctx, r.sess), filter, update, opts).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *usersRepo) update(ctx context.Context, filter, update bson.M) error {
	return requireMatch(r.c.UpdateOne(bind(ctx, r.sess), filter, update))
}

func (r *usersRepo) count(ctx context.Context, filter bson.M) (int, error) {
	n, err := r.c.CountDocuments(bind(ctx, r.sess), filter)
	return int(n), err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.c.InsertOne(bind(ctx, r.sess), toUserDoc(u))
	return mapDuplicate(err)
}

func (r *usersRepo) DeletePendingUser(ctx context.Context, orgID, userID string) error {
	res, err := r.c.DeleteOne(bind(ctx, r.sess), bson.M{
		"_id":             userID,
		"organization_id": orgID,
		"status":          string(domain.StatusInvited),
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ListByOrganization(ctx context.Context, orgID string) ([]domain.User, error) {
	ctx = bind(ctx, r.sess)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// bumpEpoch increments a counter on the organization document when running
// in a transaction. Two transactions bumping the same counter write the
// same document, so one of them aborts and is retried instead of both
// acting on a stale count. Outside a transaction it does nothing.
func (r *usersRepo) bumpEpoch(ctx context.Context, orgID, field string) error {
	if r.sess == nil {
		return nil
	}
	_, err := r.orgs.UpdateOne(bind(ctx, r.sess), bson.M{"_id": orgID}, bson.M{"$inc": bson.M{field: 1}})
	return err
}

// CountSeats bumps the organization's seat epoch first so concurrent seat
// checks of the same organization serialize.
func (r *usersRepo) CountSeats(ctx context.Context, orgID string, now time.Time) (int, int, error) {
	if err := r.bumpEpoch(ctx, orgID, "seat_epoch"); err != nil {
		return 0, 0, err
	}

	active, err := r.count(ctx, bson.M{"organization_id": orgID, "status": string(domain.StatusActive)})
	if err != nil {
		return 0, 0, err
	}
	pending, err := r.count(ctx, bson.M{
		"organization_id":   orgID,
		"status":            string(domain.StatusInvited),
		"invite_expires_at": bson.M{"$gt": utc(now)},
	})
	if err != nil {
		return 0, 0, err
	}
	return active, pending, nil
}

// CountActiveByRole bumps the organization's admin epoch first so two
// transactions demoting or deactivating different admins cannot both pass
// the last admin check.
func (r *usersRepo) CountActiveByRole(ctx context.Context, orgID string, role domain.Role) (int, error) {
	if err := r.bumpEpoch(ctx, orgID, "admin_epoch"); err != nil {
		return 0, err
	}
	return r.count(ctx, bson.M{
		"organization_id": orgID,
		"role":            string(role),
		"status":          string(domain.StatusActive),
	})
}

func (r *usersRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	return r.count(ctx, bson.M{"role": string(role)})
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return r.update(ctx,
		bson.M{"_id": userID, "status": bson.M{"$ne": string(domain.StatusInvited)}},
		bson.M{
			"$set":   bson.M{"password_hash": hash, "updated_at": utc(now)},
			"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
		})
}

func (r *usersRepo) SetStatus(ctx context.Context, userID string, status domain.UserStatus, now time.Time) error {
	return r.update(ctx,
		bson.M{"_id": userID, "status": bson.M{"$in": bson.A{string(domain.StatusActive), string(domain.StatusInactive)}}},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": utc(now)}})
}

func (r *usersRepo) SetRole(ctx context.Context, userID string, role domain.Role, now time.Time) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"role": string(role), "updated_at": utc(now)}})
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string, now time.Time) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_login_at": utc(now)}})
}

func (r *usersRepo) SetInviteToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	return r.update(ctx,
		bson.M{"_id": userID, "status": string(domain.StatusInvited)},
		bson.M{"$set": bson.M{
			"invite_token_hash": tokenHash,
			"invite_expires_at": utc(expiresAt),
			"updated_at":        utc(now),
		}})
}

func (r *usersRepo) GetPendingByInviteHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return r.findOne(ctx, bson.M{
		"invite_token_hash": tokenHash,
		"status":            string(domain.StatusInvited),
		"invite_expires_at": bson.M{"$gt": utc(now)},
	})
}

func (r *usersRepo) AcceptInvite(ctx context.Context, in store.AcceptInvite, now time.Time) (domain.User, error) {
	set := bson.M{
		"password_hash":  in.PasswordHash,
		"status":         string(domain.StatusActive),
		"email_verified": true,
		"updated_at":     utc(now),
	}
	if in.FirstName != "" {
		set["first_name"] = in.FirstName
	}
	if in.LastName != "" {
		set["last_name"] = in.LastName
	}
	return r.findAndUpdate(ctx,
		bson.M{
			"invite_token_hash": in.TokenHash,
			"status":            string(domain.StatusInvited),
			"invite_expires_at": bson.M{"$gt": utc(now)},
		},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"invite_token_hash": "", "invite_expires_at": ""},
		})
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	return r.update(ctx,
		bson.M{"_id": userID, "status": string(domain.StatusActive)},
		bson.M{"$set": bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": utc(expiresAt),
			"updated_at":       utc(now),
		}})
}

func (r *usersRepo) GetUserByResetHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": utc(now)},
		"status":           string(domain.StatusActive),
	})
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	return r.findAndUpdate(ctx,
		bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": bson.M{"$gt": utc(now)},
			"status":           string(domain.StatusActive),
		},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash, "updated_at": utc(now)},
			"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
		})
}

func (r *usersRepo) SetVerifyToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"verify_token_hash": tokenHash,
			"verify_expires_at": utc(expiresAt),
			"updated_at":        utc(now),
		}})
}

func (r *usersRepo) ConsumeVerifyToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return r.findAndUpdate(ctx,
		bson.M{
			"verify_token_hash": tokenHash,
			"verify_expires_at": bson.M{"$gt": utc(now)},
		},
		bson.M{
			"$set":   bson.M{"email_verified": true, "updated_at": utc(now)},
			"$unset": bson.M{"verify_token_hash": "", "verify_expires_at": ""},
		})
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string, now time.Time) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{
			"$set":   bson.M{"mfa_secret": secret, "updated_at": utc(now)},
			"$unset": bson.M{"mfa_enabled_at": ""},
		})
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, now time.Time) error {
	return r.update(ctx,
		bson.M{"_id": userID, "mfa_secret": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"mfa_enabled_at": utc(now), "updated_at": utc(now)}})
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string, now time.Time) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{
			"$set":   bson.M{"updated_at": utc(now)},
			"$unset": bson.M{"mfa_secret": "", "mfa_enabled_at": ""},
		})
}

func (r *usersRepo) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	ctx = bind(ctx, r.sess)
	cutoff := utc(now)

	reset, err := r.c.UpdateMany(ctx,
		bson.M{"reset_expires_at": bson.M{"$lte": cutoff}},
		bson.M{"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""}})
	if err != nil {
		return 0, err
	}
	verify, err := r.c.UpdateMany(ctx,
		bson.M{"verify_expires_at": bson.M{"$lte": cutoff}},
		bson.M{"$unset": bson.M{"verify_token_hash": "", "verify_expires_at": ""}})
	if err != nil {
		return reset.ModifiedCount, err
	}
	return reset.ModifiedCount + verify.ModifiedCount, nil
}

func (r *usersRepo) DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.c.DeleteMany(bind(ctx, r.sess), bson.M{
		"status":            string(domain.StatusInvited),
		"invite_expires_at": bson.M{"$lte": utc(before)},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
