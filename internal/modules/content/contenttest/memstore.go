// Package contenttest provides an in-memory content.Store for tests.
package contenttest

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/pkg/apperr"
)

// Store keeps records in insertion order. Set FailWrites to make Create and
// Update fail with a persistence error.
type Store[T any, P content.Entity[T]] struct {
	mu    sync.Mutex
	kind  models.Kind
	items []T

	FailWrites error
	Deleted    []primitive.ObjectID
	Now        func() time.Time
}

func NewStore[T any, P content.Entity[T]](kind models.Kind) *Store[T, P] {
	return &Store[T, P]{kind: kind, Now: time.Now}
}

func (s *Store[T, P]) slugTaken(exclude primitive.ObjectID) func(context.Context, string) (bool, error) {
	return func(_ context.Context, candidate string) (bool, error) {
		for i := range s.items {
			meta := P(&s.items[i]).Meta()
			if meta.Slug == candidate && meta.ID != exclude {
				return true, nil
			}
		}
		return false, nil
	}
}

func (s *Store[T, P]) index(id primitive.ObjectID) int {
	return slices.IndexFunc(s.items, func(v T) bool { return P(&v).Meta().ID == id })
}

func (s *Store[T, P]) Create(ctx context.Context, item P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return apperr.Persistence(string(s.kind)+".create", s.FailWrites)
	}

	meta := item.Meta()
	meta.ID = primitive.NewObjectID()
	content.StampCreate(meta, s.Now())
	slug, err := content.NextSlug(ctx, s.kind, meta.Title, s.slugTaken(primitive.NilObjectID))
	if err != nil {
		return err
	}
	meta.Slug = slug
	if saver, ok := any(item).(content.Saver); ok {
		saver.BeforeSave()
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *Store[T, P]) Update(ctx context.Context, item P, reslug bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return apperr.Persistence(string(s.kind)+".update", s.FailWrites)
	}

	meta := item.Meta()
	i := s.index(meta.ID)
	if i < 0 {
		return apperr.NotFound(string(s.kind)+".update", string(s.kind))
	}
	if reslug {
		slug, err := content.NextSlug(ctx, s.kind, meta.Title, s.slugTaken(meta.ID))
		if err != nil {
			return err
		}
		meta.Slug = slug
	}
	meta.UpdatedAt = s.Now().UTC().Truncate(time.Millisecond)
	if saver, ok := any(item).(content.Saver); ok {
		saver.BeforeSave()
	}
	s.items[i] = *item
	return nil
}

func (s *Store[T, P]) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return apperr.NotFound(string(s.kind)+".delete", string(s.kind))
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.Deleted = append(s.Deleted, id)
	return nil
}

func (s *Store[T, P]) FindByID(_ context.Context, id string) (P, error) {
	oid, err := content.ParseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(oid)
	if i < 0 {
		return nil, apperr.NotFound(string(s.kind)+".find", string(s.kind))
	}
	v := s.items[i]
	return &v, nil
}

func (s *Store[T, P]) FindBySlug(_ context.Context, slug string) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.items {
		if P(&v).Meta().Slug == slug {
			return &v, nil
		}
	}
	return nil, apperr.NotFound(string(s.kind)+".find_by_slug", string(s.kind))
}

// List returns records newest first. Filters are ignored.
func (s *Store[T, P]) List(_ context.Context, q content.ListQuery) ([]T, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(make([]T, 0, len(s.items)), s.items...)
	slices.Reverse(all)

	total := int64(len(all))
	start := min(q.Offset, len(all))
	end := len(all)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(all))
	}
	return all[start:end], total, nil
}

// Len reports the number of stored records.
func (s *Store[T, P]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
