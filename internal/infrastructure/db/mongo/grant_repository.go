package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

const (
	collectionGrants     = "role_grants"
	collectionGrantAudit = "grant_audit"
)

// GrantRepository implements ports.GrantRepository using MongoDB.
type GrantRepository struct {
	grants *mongo.Collection
	audit  *mongo.Collection
}

func NewGrantRepository(db *mongo.Database) *GrantRepository {
	return &GrantRepository{
		grants: db.Collection(collectionGrants),
		audit:  db.Collection(collectionGrantAudit),
	}
}

// ActiveGrants returns grants targeting the identity's id or email that are
// neither revoked nor expired at now.
func (r *GrantRepository) ActiveGrants(ctx context.Context, id domain.Identity, now time.Time) ([]domain.RoleGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, activeGrantsFilter(id, now), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// List returns every active grant, newest first.
func (r *GrantRepository) List(ctx context.Context, now time.Time) ([]domain.RoleGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, activeFilter(now), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *GrantRepository) Create(ctx context.Context, g *domain.RoleGrant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.grants.InsertOne(ctx, g); err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

// Revoke stamps revoked_at on an unrevoked grant. Unknown or already
// revoked grants report domain.ErrGrantNotFound.
func (r *GrantRepository) Revoke(ctx context.Context, grantID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": grantID, "revoked_at": bson.M{"$exists": false}}
	res, err := r.grants.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"revoked_at": at.UTC()}})
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

// EnsureBootstrap inserts configuration-seeded grants that do not exist
// yet. Existing documents, including revoked ones, are left untouched.
func (r *GrantRepository) EnsureBootstrap(ctx context.Context, grants []domain.RoleGrant) error {
	if len(grants) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(grants))
	for _, g := range grants {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": g.ID}).
			SetUpdate(bson.M{"$setOnInsert": g}).
			SetUpsert(true))
	}
	if _, err := r.grants.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bootstrap grants: %w", err)
	}
	return nil
}

// InsertAudit appends an entry to the grant_audit collection.
func (r *GrantRepository) InsertAudit(ctx context.Context, entry *domain.GrantAuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.audit.InsertOne(ctx, entry)
	return err
}

// EnsureIndexes creates necessary indexes on the grant collections.
func (r *GrantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.grants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_kind", Value: 1}, {Key: "subject", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}); err != nil {
		return err
	}
	_, err := r.audit.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "grant_id", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}

func (r *GrantRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.RoleGrant, error) {
	cur, err := r.grants.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find grants: %w", err)
	}
	defer cur.Close(ctx)

	grants := []domain.RoleGrant{}
	if err := cur.All(ctx, &grants); err != nil {
		return nil, fmt.Errorf("decode grants: %w", err)
	}
	return grants, nil
}

func activeFilter(now time.Time) bson.M {
	return bson.M{
		"revoked_at": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": now.UTC()}},
		},
	}
}

// activeGrantsFilter narrows activeFilter to the grants that can match id.
// Emails are stored lowercased.
func activeGrantsFilter(id domain.Identity, now time.Time) bson.M {
	subjects := bson.A{
		bson.M{"subject_kind": string(domain.GrantSubjectUserID), "subject": id.ID},
	}
	if email := strings.ToLower(strings.TrimSpace(id.Email)); email != "" {
		subjects = append(subjects, bson.M{"subject_kind": string(domain.GrantSubjectEmail), "subject": email})
	}
	return bson.M{
		"$and": bson.A{
			activeFilter(now),
			bson.M{"$or": subjects},
		},
	}
}
