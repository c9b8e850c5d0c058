package content_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/database/mongotest"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/pkg/apperr"
)

func TestMain(m *testing.M) {
	os.Exit(mongotest.Main(m))
}

func podcastRepo(t *testing.T) *content.Repository[models.Podcast, *models.Podcast] {
	db := mongotest.NewDB(t)
	return content.NewRepository[models.Podcast, *models.Podcast](db, content.Schema{
		Kind:         models.KindPodcast,
		Collection:   database.CollectionPodcasts,
		DefaultSort:  content.SortNewest,
		SearchFields: []string{"title", "description"},
	})
}

func newPodcast(title string) *models.Podcast {
	return &models.Podcast{
		Base:        models.Base{Title: title},
		Description: "about " + title,
		PodcastLink: "https://listen.example.com/" + title,
		Thumbnail:   models.Media{URL: "https://cdn.example.com/x.jpg", PublicID: "podcasts/x.jpg"},
	}
}

func TestRepositorySlugCollisions(t *testing.T) {
	repo := podcastRepo(t)
	ctx := mongotest.Context(t)

	first, second := newPodcast("Hello World!"), newPodcast("Hello World!")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
	assert.False(t, first.ID.IsZero())
	assert.False(t, first.Date.IsZero())

	got, err := repo.FindBySlug(ctx, "hello-world-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRepositoryUpdateKeepsOwnSlug(t *testing.T) {
	repo := podcastRepo(t)
	ctx := mongotest.Context(t)

	p := newPodcast("Same Title")
	require.NoError(t, repo.Create(ctx, p))
	p.Description = "changed"
	require.NoError(t, repo.Update(ctx, p, true))
	assert.Equal(t, "same-title", p.Slug)

	got, err := repo.FindByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Description)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
}

func TestRepositoryNotFoundAndMalformedID(t *testing.T) {
	repo := podcastRepo(t)
	ctx := mongotest.Context(t)

	_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = repo.FindByID(ctx, "not-an-id")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = repo.Delete(ctx, primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	ghost := newPodcast("Ghost")
	ghost.ID = primitive.NewObjectID()
	assert.True(t, apperr.Is(repo.Update(ctx, ghost, false), apperr.KindNotFound))
}

func TestRepositoryListPagesAndSearches(t *testing.T) {
	repo := podcastRepo(t)
	ctx := mongotest.Context(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Alpha", "Beta", "Gamma"} {
		p := newPodcast(title)
		p.Date = base.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, repo.Create(ctx, p))
	}

	items, total, err := repo.List(ctx, content.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Gamma", items[0].Title)

	items, total, err = repo.List(ctx, content.ListQuery{Sort: content.SortOldest, Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Gamma", items[0].Title)

	items, total, err = repo.List(ctx, content.ListQuery{Filter: content.Filter{Search: "BET"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Beta", items[0].Title)
}

func TestRepositoryActiveAdsInPriorityOrder(t *testing.T) {
	db := mongotest.NewDB(t)
	ctx := mongotest.Context(t)
	repo := content.NewRepository[models.Advertisement, *models.Advertisement](db, content.Schema{
		Kind:        models.KindAd,
		Collection:  database.CollectionAds,
		DefaultSort: content.SortPriority,
	})

	past := time.Now().Add(-48 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	ads := []*models.Advertisement{
		{Base: models.Base{Title: "low"}, Priority: models.PriorityLow, IsActive: true},
		{Base: models.Base{Title: "featured"}, Priority: models.PriorityFeatured, IsActive: true},
		{Base: models.Base{Title: "expired"}, Priority: models.PriorityHigh, IsActive: true, StartDate: &past, EndDate: &yesterday},
		{Base: models.Base{Title: "paused"}, Priority: models.PriorityHigh},
		{Base: models.Base{Title: "unranked"}, IsActive: true},
	}
	for _, ad := range ads {
		require.NoError(t, repo.Create(ctx, ad))
	}

	active := true
	items, total, err := repo.List(ctx, content.ListQuery{Filter: content.Filter{Active: &active}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	titles := make([]string, len(items))
	for i, ad := range items {
		titles[i] = ad.Title
	}
	assert.Equal(t, []string{"featured", "low", "unranked"}, titles)
}
