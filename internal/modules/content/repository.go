package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/pkg/apperr"
)

// Store is the persistence contract the workflow and handlers depend on.
type Store[T any, P Entity[T]] interface {
	Create(ctx context.Context, item P) error
	// Update replaces the stored record. With reslug the slug is derived again
	// from the current title.
	Update(ctx context.Context, item P, reslug bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id string) (P, error)
	FindBySlug(ctx context.Context, slug string) (P, error)
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
}

// Repository is the MongoDB Store for one kind.
type Repository[T any, P Entity[T]] struct {
	coll   *mongo.Collection
	schema Schema
	now    func() time.Time
}

func NewRepository[T any, P Entity[T]](db *database.DB, schema Schema) *Repository[T, P] {
	return &Repository[T, P]{
		coll:   db.Collection(schema.Collection),
		schema: schema,
		now:    time.Now,
	}
}

// ParseID converts a hex id, reporting a malformed one as a validation error.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid("id", "%q is not a valid id", id)
	}
	return oid, nil
}

func (r *Repository[T, P]) op(name string) string {
	return string(r.schema.Kind) + "." + name
}

func (r *Repository[T, P]) slugExists(exclude primitive.ObjectID) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, candidate string) (bool, error) {
		filter := bson.M{"slug": candidate}
		if !exclude.IsZero() {
			filter["_id"] = bson.M{"$ne": exclude}
		}
		n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return false, fmt.Errorf("probe slug: %w", err)
		}
		return n > 0, nil
	}
}

func (r *Repository[T, P]) Create(ctx context.Context, item P) error {
	meta := item.Meta()
	meta.ID = primitive.NewObjectID()
	StampCreate(meta, r.now())

	s, err := NextSlug(ctx, r.schema.Kind, meta.Title, r.slugExists(primitive.NilObjectID))
	if err != nil {
		return apperr.Persistence(r.op("create"), err)
	}
	meta.Slug = s
	beforeSave(item)

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return apperr.Persistence(r.op("create"), err)
	}
	return nil
}

func (r *Repository[T, P]) Update(ctx context.Context, item P, reslug bool) error {
	meta := item.Meta()
	if reslug {
		s, err := NextSlug(ctx, r.schema.Kind, meta.Title, r.slugExists(meta.ID))
		if err != nil {
			return apperr.Persistence(r.op("update"), err)
		}
		meta.Slug = s
	}
	meta.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	beforeSave(item)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": meta.ID}, item)
	if err != nil {
		return apperr.Persistence(r.op("update"), err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(r.op("update"), string(r.schema.Kind))
	}
	return nil
}

func (r *Repository[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Persistence(r.op("delete"), err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(r.op("delete"), string(r.schema.Kind))
	}
	return nil
}

func (r *Repository[T, P]) FindByID(ctx context.Context, id string) (P, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "find", bson.M{"_id": oid})
}

func (r *Repository[T, P]) FindBySlug(ctx context.Context, slug string) (P, error) {
	return r.findOne(ctx, "find_by_slug", bson.M{"slug": slug})
}

func (r *Repository[T, P]) findOne(ctx context.Context, name string, filter bson.M) (P, error) {
	item := P(new(T))
	err := r.coll.FindOne(ctx, filter).Decode(item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(r.op(name), string(r.schema.Kind))
	}
	if err != nil {
		return nil, apperr.Persistence(r.op(name), err)
	}
	return item, nil
}

func (r *Repository[T, P]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	filter := buildFilter(q.Filter, r.schema.SearchFields, r.now().UTC())

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Persistence(r.op("count"), err)
	}

	opts := options.Find().
		SetSort(buildSort(q.Sort, r.schema.DefaultSort)).
		SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Persistence(r.op("list"), err)
	}
	items := make([]T, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, apperr.Persistence(r.op("list"), err)
	}
	return items, total, nil
}
