package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/store"
)

type item struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Category  string             `bson:"category"`
	Features  []string           `bson:"features"`
	Price     *float64           `bson:"price,omitempty"`
	IsActive  bool               `bson:"isActive"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func price(v float64) *float64 { return &v }

func seed(t *testing.T, repo *Memory[item], items ...item) []item {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		}
		require.NoError(t, repo.Insert(context.Background(), &items[i]))
	}
	return items
}

func TestMemoryFindSortsAndPages(t *testing.T) {
	repo := NewMemory[item]()
	seed(t, repo, item{Title: "a"}, item{Title: "b"}, item{Title: "c"}, item{Title: "d"}, item{Title: "e"})

	got, err := repo.Find(context.Background(), nil, store.FindOptions{
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
		Skip:  1,
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Title)
	assert.Equal(t, "c", got[1].Title)

	got, err = repo.Find(context.Background(), nil, store.FindOptions{Skip: 10})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryFilters(t *testing.T) {
	repo := NewMemory[item]()
	seed(t, repo,
		item{Title: "Blood Test", Category: "lab", Features: []string{"Fasting"}, IsActive: true},
		item{Title: "X-Ray", Category: "imaging", Features: []string{"Quick"}},
		item{Title: "Thyroid", Category: "lab", Features: []string{"Hormones"}, IsActive: true},
	)
	ctx := context.Background()

	n, err := repo.Count(ctx, bson.M{"isActive": true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	search := bson.M{"$or": []bson.M{
		{"title": primitive.Regex{Pattern: "blood", Options: "i"}},
		{"features": primitive.Regex{Pattern: "quick", Options: "i"}},
	}}
	n, err = repo.Count(ctx, search)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.Count(ctx, bson.M{"category": bson.M{"$ne": "lab"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	since := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	n, err = repo.Count(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	repo := NewMemory[item]()
	items := seed(t, repo, item{Title: "old", IsActive: true})
	ctx := context.Background()

	updated, err := repo.UpdateByID(ctx, items[0].ID, bson.M{"title": "new", "isActive": false})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.False(t, updated.IsActive)
	assert.Equal(t, items[0].CreatedAt, updated.CreatedAt)

	deleted, err := repo.DeleteByID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "new", deleted.Title)

	_, err = repo.FindByID(ctx, items[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = repo.UpdateByID(ctx, items[0].ID, bson.M{"title": "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = repo.DeleteByID(ctx, items[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryUniqueFields(t *testing.T) {
	repo := NewMemory[item]("title")
	seed(t, repo, item{Title: "admin@lab.com"})

	err := repo.Insert(context.Background(), &item{ID: primitive.NewObjectID(), Title: "admin@lab.com"})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))
}

func TestMemoryAggregates(t *testing.T) {
	repo := NewMemory[item]()
	seed(t, repo,
		item{Category: "lab", Price: price(100)},
		item{Category: "lab", Price: price(300)},
		item{Category: "imaging"},
	)
	ctx := context.Background()

	groups, err := repo.CountBy(ctx, "category", nil)
	require.NoError(t, err)
	assert.Equal(t, []store.GroupCount{{Key: "lab", Count: 2}, {Key: "imaging", Count: 1}}, groups)

	avg, err := repo.Average(ctx, "price", nil)
	require.NoError(t, err)
	assert.Equal(t, 200.0, avg)

	avg, err = repo.Average(ctx, "price", bson.M{"category": "imaging"})
	require.NoError(t, err)
	assert.Zero(t, avg)
}
