package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore implements Store on a MongoDB collection. Documents are
// addressed by _id = normalized key, so InsertOne is create-if-absent.
type MongoStore struct {
	col    *mongo.Collection
	strong *mongo.Collection
	cache  *Cache
}

// NewMongoStore wraps col. Strong reads go to the primary with majority
// read concern; every server answer is written through to cache.
func NewMongoStore(col *mongo.Collection, cache *Cache) *MongoStore {
	strong, err := col.Clone(options.Collection().
		SetReadPreference(readpref.Primary()).
		SetReadConcern(readconcern.Majority()))
	if err != nil {
		logger.Warnf("records: clone collection for strong reads: %v", err)
		strong = col
	}
	return &MongoStore{col: col, strong: strong, cache: cache}
}

func (r *MongoStore) ReadStrong(ctx context.Context, key string) (*models.Identity, error) {
	var rec models.Identity
	if err := r.strong.FindOne(ctx, bson.M{"_id": key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.cache.remember(ctx, key, nil)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	r.cache.remember(ctx, key, &rec)
	return &rec, nil
}

func (r *MongoStore) ReadCached(ctx context.Context, key string) (*models.Identity, error) {
	return r.cache.Get(ctx, key)
}

func (r *MongoStore) Create(ctx context.Context, rec *models.Identity) error {
	rec.ID = rec.NormalizedKey
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	r.cache.remember(ctx, rec.ID, rec)
	return nil
}

func (r *MongoStore) ScanAll(ctx context.Context) ([]*models.Identity, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cur.Close(ctx)
	out := []*models.Identity{}
	for cur.Next(ctx) {
		var rec models.Identity
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, rec := range out {
		r.cache.remember(ctx, rec.Key(), rec)
	}
	return out, nil
}
