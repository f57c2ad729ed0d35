package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingsDoc struct {
	AllowPublicSignup        bool `bson:"allow_public_signup"`
	RequireEmailVerification bool `bson:"require_email_verification"`
}

type organizationDoc struct {
	ID           string      `bson:"_id"`
	Name         string      `bson:"name"`
	Slug         string      `bson:"slug"`
	Type         string      `bson:"type"`
	Status       string      `bson:"status"`
	Settings     settingsDoc `bson:"settings"`
	LicenseSeats int         `bson:"license_seats"`
	SeatEpoch    int64       `bson:"seat_epoch,omitempty"`
	AdminEpoch   int64       `bson:"admin_epoch,omitempty"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

func toOrganizationDoc(o domain.Organization) organizationDoc {
	return organizationDoc{
		ID:     o.ID,
		Name:   o.Name,
		Slug:   o.Slug,
		Type:   string(o.Type),
		Status: string(o.Status),
		Settings: settingsDoc{
			AllowPublicSignup:        o.Settings.AllowPublicSignup,
			RequireEmailVerification: o.Settings.RequireEmailVerification,
		},
		LicenseSeats: o.LicenseSeats,
		CreatedAt:    utc(o.CreatedAt),
		UpdatedAt:    utc(o.UpdatedAt),
	}
}

func (d organizationDoc) toDomain() domain.Organization {
	return domain.Organization{
		ID:     d.ID,
		Name:   d.Name,
		Slug:   d.Slug,
		Type:   domain.OrganizationType(d.Type),
		Status: domain.OrganizationStatus(d.Status),
		Settings: domain.OrganizationSettings{
			AllowPublicSignup:        d.Settings.AllowPublicSignup,
			RequireEmailVerification: d.Settings.RequireEmailVerification,
		},
		LicenseSeats: d.LicenseSeats,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type organizationsRepo struct {
	c    *mongo.Collection
	sess mongo.Session
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.c.InsertOne(bind(ctx, r.sess), toOrganizationDoc(o))
	return mapDuplicate(err)
}

func (r *organizationsRepo) findOne(ctx context.Context, filter bson.M) (domain.Organization, error) {
	var doc organizationDoc
	if err := r.c.FindOne(bind(ctx, r.sess), filter).Decode(&doc); err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *organizationsRepo) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	ctx = bind(ctx, r.sess)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []organizationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Organization, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *organizationsRepo) set(ctx context.Context, id string, fields bson.M, now time.Time) error {
	fields["updated_at"] = utc(now)
	return requireMatch(r.c.UpdateOne(bind(ctx, r.sess), bson.M{"_id": id}, bson.M{"$set": fields}))
}

func (r *organizationsRepo) UpdateSettings(ctx context.Context, id string, s domain.OrganizationSettings, now time.Time) error {
	return r.set(ctx, id, bson.M{
		"settings.allow_public_signup":        s.AllowPublicSignup,
		"settings.require_email_verification": s.RequireEmailVerification,
	}, now)
}

func (r *organizationsRepo) UpdateProfile(ctx context.Context, id, name string, typ domain.OrganizationType, now time.Time) error {
	return r.set(ctx, id, bson.M{"name": name, "type": string(typ)}, now)
}

func (r *organizationsRepo) SetLicenseSeats(ctx context.Context, id string, seats int, now time.Time) error {
	return r.set(ctx, id, bson.M{"license_seats": seats}, now)
}

func (r *organizationsRepo) SetStatus(ctx context.Context, id string, status domain.OrganizationStatus, now time.Time) error {
	return r.set(ctx, id, bson.M{"status": string(status)}, now)
}
