package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brushbolt/store-backend/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductsCollection   = "products"
	PaintsCollection     = "paints"
	CategoriesCollection = "categories"
	UsersCollection      = "users"
	CartsCollection      = "carts"
	WishlistsCollection  = "wishlists"
	ReviewsCollection    = "reviews"
	OrdersCollection     = "orders"
)

// Store is the handle every handler and service receives. It owns the Mongo
// client; nothing else in the process holds database state.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore wraps an existing database handle.
func NewStore(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// Connect dials MongoDB, pings it and returns a ready Store.
func Connect(ctx context.Context, uri, name string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Ping the database
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Printf("Connected to MongoDB database %q", name)
	return &Store{client: client, db: client.Database(name)}, nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping is used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// translate maps driver errors onto the package-independent sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return utils.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", utils.ErrDuplicate, err)
	}
	return err
}

// findPage runs a counted, paged query and decodes into T.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, p utils.ListParams) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}

	opts := options.Find().
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetSort(p.SortDoc())

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return items, total, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
