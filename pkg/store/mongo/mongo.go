// Package mongo stores annotated sequences in MongoDB.
//
// Records live in one collection with a unique index on (db, hash):
//
//	{ db: "giraffe", hash: "<sha1>", name: "pUC19", length: 2686,
//	  features: [{name, start, end, type, clockwise?, cut?}, ...], updated_at }
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/plasmap/pkg/store"
)

// DefaultCollection is the collection records are kept in.
const DefaultCollection = "maps"

const disconnectTimeout = 5 * time.Second

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Connect dials uri, checks the connection and makes sure the key index
// exists. Records are kept in database.DefaultCollection.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := New(client, client.Database(database).Collection(DefaultCollection))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing collection. Close disconnects client.
func New(client *mongo.Client, coll *mongo.Collection) *Store {
	return &Store{client: client, coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique (db, hash) index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "db", Value: 1}, {Key: "hash", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("db_hash"),
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func keyFilter(db, hash string) bson.D {
	return bson.D{{Key: "db", Value: db}, {Key: "hash", Value: hash}}
}

func (s *Store) Get(ctx context.Context, db, hash string) (*store.Record, error) {
	if err := store.ValidateKey(db, hash); err != nil {
		return nil, err
	}
	var rec store.Record
	err := s.coll.FindOne(ctx, keyFilter(db, hash)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(db, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", db, hash, err)
	}
	store.SortFeatures(rec.Features)
	return &rec, nil
}

func (s *Store) Put(ctx context.Context, rec *store.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	_, err := s.coll.ReplaceOne(ctx, keyFilter(rec.DB, rec.Hash), rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", rec.DB, rec.Hash, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, db, hash string) error {
	if err := store.ValidateKey(db, hash); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, keyFilter(db, hash))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", db, hash, err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(db, hash)
	}
	return nil
}

func (s *Store) List(ctx context.Context, db string) ([]store.Record, error) {
	if err := store.ValidateDB(db); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetProjection(bson.D{{Key: "features", Value: 0}}).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "hash", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{{Key: "db", Value: db}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", db, err)
	}
	recs := make([]store.Record, 0)
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("list %s: %w", db, err)
	}
	return recs, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
