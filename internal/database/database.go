package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/podcastify/core/internal/config"
)

// Collection names.
const (
	CollectionPodcasts      = "podcasts"
	CollectionBlogPosts     = "blogposts"
	CollectionAds           = "advertisements"
	CollectionSubscriptions = "notificationsubscriptions"
)

// DB owns the Mongo client for the life of the process. It is created once in
// main and passed to every store.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials Mongo, verifies the primary is reachable and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	d := &DB{client: cli, db: cli.Database(cfg.Database)}
	if err := d.EnsureIndexes(ctx); err != nil {
		_ = d.Close(context.Background())
		return nil, err
	}
	return d, nil
}

func (d *DB) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

func (d *DB) Database() *mongo.Database { return d.db }

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every store relies on. The unique indexes
// on slug and endpoint are what actually enforce uniqueness under concurrent writes.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	slugUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("slug_unique").SetUnique(true),
	}
	newest := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("date_created_desc"),
	}

	indexes := map[string][]mongo.IndexModel{
		CollectionPodcasts: {slugUnique, newest},
		CollectionBlogPosts: {
			slugUnique, newest,
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("category_date")},
			{Keys: bson.D{{Key: "featured", Value: 1}}, Options: options.Index().SetName("featured")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags")},
		},
		CollectionAds: {
			slugUnique,
			{
				Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "priorityRank", Value: -1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("active_priority_created"),
			},
		},
		CollectionSubscriptions: {
			{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetName("endpoint_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "isActive", Value: 1}}, Options: options.Index().SetName("active")},
		},
	}

	for coll, models := range indexes {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}
