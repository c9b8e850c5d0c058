package subscription_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/database/mongotest"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/notification/subscription"
	"github.com/podcastify/core/internal/pkg/apperr"
)

func TestMain(m *testing.M) {
	os.Exit(mongotest.Main(m))
}

const endpoint = "https://fcm.googleapis.com/fcm/send/abc123"

func newStore(t *testing.T) (*subscription.Store, *database.DB) {
	db := mongotest.NewDB(t)
	return subscription.NewStore(db), db
}

func input(p256dh string) subscription.SubscribeInput {
	return subscription.SubscribeInput{
		Endpoint: endpoint,
		Keys:     models.PushKeys{P256dh: p256dh, Auth: "auth"},
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	store, db := newStore(t)
	ctx := mongotest.Context(t)

	first, err := store.Subscribe(ctx, input("key-1"))
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, models.DefaultPreferences(), first.Preferences)

	prefs := models.Preferences{Podcasts: true}
	in := input("key-2")
	in.Preferences = &prefs
	second, err := store.Subscribe(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "key-2", second.Keys.P256dh)
	assert.Equal(t, prefs, second.Preferences)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	n, err := db.Collection(database.CollectionSubscriptions).CountDocuments(ctx, bson.M{"endpoint": endpoint})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubscribeValidates(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Subscribe(mongotest.Context(t), subscription.SubscribeInput{Endpoint: "nope"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUnsubscribeIsSoft(t *testing.T) {
	store, _ := newStore(t)
	ctx := mongotest.Context(t)

	_, err := store.Subscribe(ctx, input("k"))
	require.NoError(t, err)
	require.NoError(t, store.Unsubscribe(ctx, endpoint))

	sub, err := store.Get(ctx, endpoint)
	require.NoError(t, err)
	assert.False(t, sub.IsActive)
	assert.Equal(t, models.DefaultPreferences(), sub.Preferences)

	active, err := store.ActiveFor(ctx, models.CategoryPodcasts)
	require.NoError(t, err)
	assert.Empty(t, active)

	resub, err := store.Subscribe(ctx, input("k"))
	require.NoError(t, err)
	assert.True(t, resub.IsActive)

	assert.True(t, apperr.Is(store.Unsubscribe(ctx, "https://unknown.example.com/x"), apperr.KindNotFound))
}

func TestUpdatePreferencesPartial(t *testing.T) {
	store, _ := newStore(t)
	ctx := mongotest.Context(t)
	_, err := store.Subscribe(ctx, input("k"))
	require.NoError(t, err)

	off := false
	sub, err := store.UpdatePreferences(ctx, endpoint, models.PreferencesPatch{Advertisements: &off})
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{Podcasts: true, Blogs: true, Advertisements: false}, sub.Preferences)

	_, err = store.UpdatePreferences(ctx, "https://unknown.example.com/x", models.PreferencesPatch{Blogs: &off})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.UpdatePreferences(ctx, endpoint, models.PreferencesPatch{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	ads, err := store.ActiveFor(ctx, models.CategoryAdvertisements)
	require.NoError(t, err)
	assert.Empty(t, ads)
	blogs, err := store.ActiveFor(ctx, models.CategoryBlogs)
	require.NoError(t, err)
	assert.Len(t, blogs, 1)
}

func TestMarkNotifiedPruneAndStats(t *testing.T) {
	store, db := newStore(t)
	ctx := mongotest.Context(t)

	for _, ep := range []string{"https://push.example.com/a", "https://push.example.com/b"} {
		_, err := store.Subscribe(ctx, subscription.SubscribeInput{Endpoint: ep, Keys: models.PushKeys{P256dh: "p", Auth: "a"}})
		require.NoError(t, err)
	}
	_, err := db.Collection(database.CollectionSubscriptions).InsertOne(ctx, bson.M{
		"endpoint": "https://push.example.com/broken", "isActive": true,
		"preferences": models.DefaultPreferences(),
	})
	require.NoError(t, err)

	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkNotified(ctx, []string{"https://push.example.com/a"}, at))
	a, err := store.Get(ctx, "https://push.example.com/a")
	require.NoError(t, err)
	require.NotNil(t, a.LastNotified)
	assert.True(t, at.Equal(*a.LastNotified))
	b, err := store.Get(ctx, "https://push.example.com/b")
	require.NoError(t, err)
	assert.Nil(t, b.LastNotified)

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, subscription.Stats{Total: 3, Active: 3, Podcasts: 3, Blogs: 3, Advertisements: 3}, st)

	pruned, err := store.PruneInvalid(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	require.NoError(t, store.Unsubscribe(ctx, "https://push.example.com/b"))
	st, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, subscription.Stats{Total: 2, Active: 1, Podcasts: 1, Blogs: 1, Advertisements: 1}, st)
}
