package gallery

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tapestry/pkg/cache"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "tapestry"
	DefaultMongoCollection = "pieces"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string // mongodb:// connection string
	Database   string // defaults to DefaultMongoDatabase
	Collection string // defaults to DefaultMongoCollection
}

// MongoStore keeps pieces in a MongoDB collection, one document per piece
// keyed by its ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the listing index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	s := NewMongoStoreFromClient(client, opts.Database, opts.Collection)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *MongoStore) Put(ctx context.Context, p *Piece) error {
	if err := apperr.ValidatePieceID(p.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store piece %s: %w", p.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Piece, error) {
	if err := apperr.ValidatePieceID(id); err != nil {
		return nil, err
	}
	var p Piece
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load piece %s: %w", id, err)
	}
	return &p, nil
}

func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]*Piece, error) {
	filter := bson.M{}
	if opts.Owner != "" {
		filter["owner"] = opts.Owner
	}
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	var pieces []*Piece
	if err := cur.All(ctx, &pieces); err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	return pieces, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := apperr.ValidatePieceID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete piece %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
