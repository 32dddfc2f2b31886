// Package mongostore implements docstore.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"automator/internal/docstore"
)

// ConnectTimeout bounds the initial connect and ping.
const ConnectTimeout = 10 * time.Second

// Store is a MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// Open connects to uri and selects the named database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Insert implements docstore.Store. Documents without an id get a fresh ObjectID.
func (s *Store) Insert(ctx context.Context, collection string, doc any) (string, error) {
	m, err := toBSONDoc(doc)
	if err != nil {
		return "", err
	}
	var id string
	switch v := m[docstore.IDField].(type) {
	case string:
		if v == "" {
			delete(m, docstore.IDField)
			break
		}
		id = v
		m[docstore.IDField] = idValue(v)
	case primitive.ObjectID:
		id = v.Hex()
	}
	if id == "" {
		oid := primitive.NewObjectID()
		m[docstore.IDField] = oid
		id = oid.Hex()
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, m); err != nil {
		return "", wrapError(err)
	}
	return id, nil
}

// FindOne implements docstore.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	f, err := toBSON(filter)
	if err != nil {
		return err
	}
	err = s.db.Collection(collection).FindOne(ctx, f).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.ErrNotFound
	}
	return wrapError(err)
}

// FindMany implements docstore.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	f, err := toBSON(filter)
	if err != nil {
		return err
	}
	cur, err := s.db.Collection(collection).Find(ctx, f, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return wrapError(err)
	}
	return wrapError(cur.All(ctx, out))
}

// UpdateOne implements docstore.Store.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter docstore.Filter, update docstore.Update) (docstore.UpdateResult, error) {
	f, err := toBSON(filter)
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	u := updateToBSON(update)
	if len(u) == 0 {
		n, err := s.db.Collection(collection).CountDocuments(ctx, f, options.Count().SetLimit(1))
		return docstore.UpdateResult{Matched: n}, wrapError(err)
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, f, u)
	if err != nil {
		return docstore.UpdateResult{}, wrapError(err)
	}
	return docstore.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteOne implements docstore.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	f, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, f)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}

// DeleteMany implements docstore.Store.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	f, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Collection(collection).DeleteMany(ctx, f)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}

// EnsureIndex implements docstore.Store. Creating an existing index is a no-op on the server.
func (s *Store) EnsureIndex(ctx context.Context, collection string, idx docstore.Index) error {
	keys := bson.D{}
	for _, f := range idx.Fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	model := mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(idx.Unique)}
	if _, err := s.db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection, err)
	}
	return nil
}

// Close implements docstore.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%v: %w", err, docstore.ErrDuplicate)
	}
	return err
}
