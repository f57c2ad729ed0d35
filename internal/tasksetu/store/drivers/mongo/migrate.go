package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplyMigrations creates the indexes the repositories rely on. Index
// creation is idempotent, so it runs on every start.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orgIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("organizations_slug_unique"),
		},
	}
	if _, err := s.orgs.Indexes().CreateMany(ctx, orgIndexes); err != nil {
		return fmt.Errorf("mongo: organization indexes: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "invite_token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("users_invite_token_unique"),
		},
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("users_reset_token_unique"),
		},
		{
			Keys:    bson.D{{Key: "verify_token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("users_verify_token_unique"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("users_org_status"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("users_role"),
		},
		{
			Keys:    bson.D{{Key: "invite_expires_at", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("users_invite_expiry"),
		},
	}
	if _, err := s.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("mongo: user indexes: %w", err)
	}
	return nil
}
