// Package mongo implements store.Store on the official MongoDB driver.
// Transactions need a replica set; a single-node set is enough.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection         = "users"
	organizationsCollection = "organizations"
)

// Config selects the deployment and database.
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	users  *mongo.Collection
	orgs   *mongo.Collection
}

// NewStore connects and pings the primary before returning.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 20 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(15 * time.Second)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Store{
		client: client,
		db:     db,
		users:  db.Collection(usersCollection),
		orgs:   db.Collection(organizationsCollection),
	}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// WithTx runs fn inside a session transaction. The driver retries fn on
// transient errors, so fn must not have side effects outside tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&txStore{s: s, sess: sess})
	})
	return err
}

func (s *Store) Users() store.Users { return &usersRepo{c: s.users, orgs: s.orgs} }
func (s *Store) Organizations() store.Organizations {
	return &organizationsRepo{c: s.orgs}
}

type txStore struct {
	s    *Store
	sess mongo.Session
}

func (t *txStore) Users() store.Users {
	return &usersRepo{c: t.s.users, orgs: t.s.orgs, sess: t.sess}
}

func (t *txStore) Organizations() store.Organizations {
	return &organizationsRepo{c: t.s.orgs, sess: t.sess}
}

// bind attaches the transaction session, if any, to ctx.
func bind(ctx context.Context, sess mongo.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, sess)
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// requireMatch turns an update that matched nothing into ErrNotFound.
func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// utc drops the monotonic reading and truncates to the millisecond
// precision BSON dates carry.
func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := utc(*t)
	return &v
}
