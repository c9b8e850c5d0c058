// Package subscription is the registry of browser push subscriptions.
package subscription

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/validate"
)

// SubscribeInput is what a browser hands over after PushManager.subscribe.
type SubscribeInput struct {
	Endpoint string          `json:"endpoint" binding:"required,http_url"`
	Keys     models.PushKeys `json:"keys"`
	// Preferences replaces the stored flags when set. New subscriptions
	// without preferences opt into every category.
	Preferences *models.Preferences `json:"preferences"`
	UserAgent   string              `json:"-"`
}

// Validate lists every missing or malformed field.
func (in SubscribeInput) Validate() error {
	return validate.Struct(in).Err()
}

// Stats counts subscriptions by state and opt-in.
type Stats struct {
	Total          int64 `json:"total"          bson:"total"`
	Active         int64 `json:"active"         bson:"active"`
	Podcasts       int64 `json:"podcasts"       bson:"podcasts"`
	Blogs          int64 `json:"blogs"          bson:"blogs"`
	Advertisements int64 `json:"advertisements" bson:"advertisements"`
}

// Store keeps one document per endpoint; the unique endpoint index guards
// against duplicates.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewStore(db *database.DB) *Store {
	return &Store{coll: db.Collection(database.CollectionSubscriptions), now: time.Now}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Subscribe registers the endpoint, or reactivates it and refreshes its keys.
func (s *Store) Subscribe(ctx context.Context, in SubscribeInput) (*models.Subscription, error) {
	in.Endpoint = strings.TrimSpace(in.Endpoint)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	set := bson.M{"keys": in.Keys, "isActive": true, "updatedAt": now}
	onInsert := bson.M{"createdAt": now}
	if in.Preferences != nil {
		set["preferences"] = *in.Preferences
	} else {
		onInsert["preferences"] = models.DefaultPreferences()
	}
	if in.UserAgent != "" {
		set["userAgent"] = in.UserAgent
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var sub models.Subscription
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"endpoint": in.Endpoint}, update, opts).Decode(&sub)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent first subscribe won the insert; this one becomes an update.
		err = s.coll.FindOneAndUpdate(ctx, bson.M{"endpoint": in.Endpoint}, update, opts).Decode(&sub)
	}
	if err != nil {
		return nil, apperr.Persistence("subscription.subscribe", err)
	}
	return &sub, nil
}

// Unsubscribe deactivates the endpoint. The record and its preferences stay.
func (s *Store) Unsubscribe(ctx context.Context, endpoint string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"endpoint": endpoint},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.timestamp()}},
	)
	if err != nil {
		return apperr.Persistence("subscription.unsubscribe", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("subscription.unsubscribe", "subscription")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, endpoint string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.coll.FindOne(ctx, bson.M{"endpoint": endpoint}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("subscription.get", "subscription")
	}
	if err != nil {
		return nil, apperr.Persistence("subscription.get", err)
	}
	return &sub, nil
}

// UpdatePreferences sets only the flags present in patch.
func (s *Store) UpdatePreferences(ctx context.Context, endpoint string, patch models.PreferencesPatch) (*models.Subscription, error) {
	if patch.Empty() {
		return nil, apperr.Invalid("preferences", "at least one category flag is required")
	}
	set := bson.M{"updatedAt": s.timestamp()}
	if patch.Podcasts != nil {
		set["preferences.podcasts"] = *patch.Podcasts
	}
	if patch.Blogs != nil {
		set["preferences.blogs"] = *patch.Blogs
	}
	if patch.Advertisements != nil {
		set["preferences.advertisements"] = *patch.Advertisements
	}

	var sub models.Subscription
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"endpoint": endpoint},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("subscription.preferences", "subscription")
	}
	if err != nil {
		return nil, apperr.Persistence("subscription.preferences", err)
	}
	return &sub, nil
}

// ActiveFor returns the active subscriptions opted into c.
func (s *Store) ActiveFor(ctx context.Context, c models.Category) ([]models.Subscription, error) {
	if !c.Valid() {
		return nil, apperr.Invalid("category", "unknown category %q", c)
	}
	cur, err := s.coll.Find(ctx, bson.M{"isActive": true, "preferences." + string(c): true})
	if err != nil {
		return nil, apperr.Persistence("subscription.active", err)
	}
	subs := make([]models.Subscription, 0)
	if err := cur.All(ctx, &subs); err != nil {
		return nil, apperr.Persistence("subscription.active", err)
	}
	return subs, nil
}

// MarkNotified stamps lastNotified on the given endpoints.
func (s *Store) MarkNotified(ctx context.Context, endpoints []string, at time.Time) error {
	if len(endpoints) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"endpoint": bson.M{"$in": endpoints}},
		bson.M{"$set": bson.M{"lastNotified": at.UTC().Truncate(time.Millisecond)}},
	)
	if err != nil {
		return apperr.Persistence("subscription.mark_notified", err)
	}
	return nil
}

// PruneInvalid deletes subscriptions that cannot be encrypted to.
func (s *Store) PruneInvalid(ctx context.Context) (int64, error) {
	missing := bson.A{nil, ""}
	res, err := s.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"keys.p256dh": bson.M{"$in": missing}},
		bson.M{"keys.auth": bson.M{"$in": missing}},
	}})
	if err != nil {
		return 0, apperr.Persistence("subscription.prune", err)
	}
	return res.DeletedCount, nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	optedIn := func(field string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$and": bson.A{"$isActive", "$preferences." + field}}, 1, 0,
		}}}
	}
	pipeline := mongo.Pipeline{{{Key: "$group", Value: bson.M{
		"_id":            nil,
		"total":          bson.M{"$sum": 1},
		"active":         bson.M{"$sum": bson.M{"$cond": bson.A{"$isActive", 1, 0}}},
		"podcasts":       optedIn("podcasts"),
		"blogs":          optedIn("blogs"),
		"advertisements": optedIn("advertisements"),
	}}}}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, apperr.Persistence("subscription.stats", err)
	}
	var rows []Stats
	if err := cur.All(ctx, &rows); err != nil {
		return Stats{}, apperr.Persistence("subscription.stats", err)
	}
	if len(rows) == 0 {
		return Stats{}, nil
	}
	return rows[0], nil
}
