package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

func TestOpeningHours_Window(t *testing.T) {
	hours := catalog.Daily(geo.At(8, 0), geo.At(17, 0)).ClosedOn(time.Monday)
	hours[time.Saturday] = catalog.DayHours{Open: geo.At(7, 0), Close: geo.At(21, 0)}

	open, close, ok := hours.Window(time.Tuesday, true)
	require.True(t, ok)
	assert.Equal(t, geo.At(8, 0), open)
	assert.Equal(t, geo.At(17, 0), close)

	_, _, ok = hours.Window(time.Monday, true)
	assert.False(t, ok, "closed weekday has no window")

	open, close, ok = hours.Window(time.Monday, false)
	require.True(t, ok)
	assert.Equal(t, geo.At(7, 0), open, "unknown weekday uses widest window")
	assert.Equal(t, geo.At(21, 0), close)
}

func TestOpeningHours_Fits(t *testing.T) {
	hours := catalog.Daily(geo.At(8, 0), geo.At(17, 0))

	assert.True(t, hours.Fits(time.Wednesday, true, geo.At(8, 0), 60))
	assert.True(t, hours.Fits(time.Wednesday, true, geo.At(16, 0), 60))
	assert.False(t, hours.Fits(time.Wednesday, true, geo.At(7, 59), 30))
	assert.False(t, hours.Fits(time.Wednesday, true, geo.At(16, 30), 60))
	assert.True(t, catalog.AlwaysOpen().Fits(time.Sunday, true, geo.At(23, 0), 60))
}

func TestLocation_Classification(t *testing.T) {
	beach := &catalog.Location{Category: "beach"}
	museum := &catalog.Location{Category: "museum", Tags: []string{"history"}}
	trail := &catalog.Location{Category: "culture", Tags: []string{"Hiking"}}
	bar := &catalog.Location{Category: "nightlife", Tags: []string{"sunset"}}

	assert.True(t, beach.IsOutdoor())
	assert.False(t, museum.IsOutdoor())
	assert.True(t, trail.IsOutdoor(), "hiking tag marks outdoor regardless of category")
	assert.True(t, bar.IsPhotogenic())
	assert.False(t, museum.IsPhotogenic())

	tokens := trail.Tokens()
	assert.Contains(t, tokens, "hiking")
	assert.Contains(t, tokens, "culture")
}

func TestLocation_Schedulable(t *testing.T) {
	assert.True(t, (&catalog.Location{PriceTier: 4, AvgDurationMins: 30}).Schedulable())
	assert.False(t, (&catalog.Location{PriceTier: 1}).Schedulable())
	assert.False(t, (&catalog.Location{PriceTier: 0, AvgDurationMins: 30}).Schedulable())
	assert.False(t, (&catalog.Location{PriceTier: 5, AvgDurationMins: 30}).Schedulable())
	for _, l := range catalog.Seed() {
		assert.True(t, l.Schedulable(), l.ID)
	}
}

func TestLookupCity(t *testing.T) {
	for _, name := range []string{"Danang", "Da Nang", "DA-NANG"} {
		c, err := catalog.LookupCity(name)
		require.NoError(t, err, name)
		assert.Equal(t, "danang", c.Key)
	}

	c, err := catalog.LookupCity("Saigon")
	require.NoError(t, err)
	assert.Equal(t, "hochiminh", c.Key)

	_, err = catalog.LookupCity("Atlantis")
	assert.ErrorIs(t, err, catalog.ErrUnknownCity)
}

func TestInMemoryRepository(t *testing.T) {
	repo := catalog.NewInMemoryRepository(catalog.Seed()...)
	ctx := context.Background()

	danang, err := repo.ListByCity(ctx, "Danang")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(danang), 20)
	for i := 1; i < len(danang); i++ {
		assert.Less(t, danang[i-1].ID, danang[i].ID, "results ordered by id")
	}

	unknown, err := repo.ListByCity(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	l, err := repo.Get(ctx, "dad-dragon-bridge")
	require.NoError(t, err)
	l.Tags[0] = "mutated"

	again, err := repo.Get(ctx, "dad-dragon-bridge")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Tags[0], "repository returns copies")

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrLocationNotFound)
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := catalog.OpenSQLiteRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer repo.Close()

	seed := catalog.Seed()
	require.NoError(t, repo.Upsert(ctx, seed))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seed), n)

	hoian, err := repo.ListByCity(ctx, "Hoi An")
	require.NoError(t, err)
	assert.Len(t, hoian, 3)

	cathedral, err := repo.Get(ctx, "dad-cathedral")
	require.NoError(t, err)
	assert.Equal(t, "Da Nang Cathedral", cathedral.Name)
	assert.Equal(t, []string{"architecture", "history", "photogenic"}, cathedral.Tags)
	assert.True(t, cathedral.Hours[time.Sunday].Closed)
	assert.Equal(t, geo.At(8, 0), cathedral.Hours[time.Tuesday].Open)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrLocationNotFound)
}
