package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// CollectionName is the MongoDB collection holding catalog entries.
const CollectionName = "libraries"

// MongoStore keeps the catalog in a MongoDB collection, one document per
// coordinate.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri, verifies the connection and ensures the unique
// coordinate index exists.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "ping mongodb")
	}

	coll := client.Database(database).Collection(CollectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "group", Value: 1},
			{Key: "artifact", Value: 1},
			{Key: "version", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "create coordinate index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Record upserts e by coordinate.
func (s *MongoStore) Record(ctx context.Context, e Entry) error {
	key := bson.M{"group": e.Group, "artifact": e.Artifact, "version": e.Version}
	_, err := s.coll.UpdateOne(ctx, key, bson.M{"$set": e}, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "record %s", e.Coordinate())
	}
	return nil
}

// List returns entries matching f.
func (s *MongoStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := bson.M{}
	if f.Group != "" {
		query["group"] = f.Group
	}
	if f.Artifact != "" {
		query["artifact"] = f.Artifact
	}
	if f.Version != "" {
		query["version"] = f.Version
	}
	if f.RunID != "" {
		query["run_id"] = f.RunID
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "group", Value: 1},
		{Key: "artifact", Value: 1},
		{Key: "version", Value: 1},
	})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "list entries")
	}
	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "decode entries")
	}
	return entries, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
