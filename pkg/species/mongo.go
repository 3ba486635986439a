package species

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/arbor/pkg/errors"
)

// CollectionName is the MongoDB collection holding species documents.
const CollectionName = "species"

// MongoCatalog reads species from MongoDB. Documents use the bson field
// names of Species with the id as _id, and are listed in _id order.
type MongoCatalog struct {
	client *mongo.Client // set when the catalog owns the connection
	coll   *mongo.Collection
}

// ConnectMongo connects to uri, pings the server and returns a catalogue
// over database.species.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoCatalog, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	c := NewMongoCatalog(client.Database(database))
	c.client = client
	return c, nil
}

// NewMongoCatalog wraps an existing database handle.
func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{coll: db.Collection(CollectionName)}
}

// List returns every species ordered by id.
func (c *MongoCatalog) List(ctx context.Context) ([]Species, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list species")
	}
	var out []Species
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode species")
	}
	return out, nil
}

// Get returns the species with the given id.
func (c *MongoCatalog) Get(ctx context.Context, id string) (Species, error) {
	var s Species
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Species{}, NotFound(id)
	}
	if err != nil {
		return Species{}, errors.Wrap(errors.ErrCodeInternal, err, "get species %q", id)
	}
	return s, nil
}

// Seed upserts every species of src. Invalid entries abort the seed before
// anything is written.
func (c *MongoCatalog) Seed(ctx context.Context, src Catalog) (int, error) {
	list, err := src.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return 0, err
		}
	}
	for i, s := range list {
		_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
		if err != nil {
			return i, errors.Wrap(errors.ErrCodeInternal, err, "seed species %q", s.ID)
		}
	}
	return len(list), nil
}

// Close disconnects the client when the catalogue opened it.
func (c *MongoCatalog) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

var _ Catalog = (*MongoCatalog)(nil)
