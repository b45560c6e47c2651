package redisrepo_test

import (
	"testing"
	"time"

	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func setupTest(t *testing.T) (*redisrepo.RedisRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return redisrepo.New(rdb), mr
}

func TestGetJSON(t *testing.T) {
	t.Parallel()
	repo, _ := setupTest(t)
	ctx := t.Context()

	require.NoError(t, repo.SetJSON(ctx, "thing", cachedThing{Name: "go", N: 3}, time.Minute))

	got, err := redisrepo.Get[cachedThing](repo.Default, ctx, "thing")
	require.NoError(t, err)
	assert.Equal(t, &cachedThing{Name: "go", N: 3}, got)

	_, err = redisrepo.Get[cachedThing](repo.Default, ctx, "missing")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestGetCachedNull(t *testing.T) {
	t.Parallel()
	repo, _ := setupTest(t)
	ctx := t.Context()

	var nothing *cachedThing
	require.NoError(t, repo.SetJSON(ctx, "thing", nothing, time.Minute))

	got, err := redisrepo.Get[cachedThing](repo.Default, ctx, "thing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetMany(t *testing.T) {
	t.Parallel()
	repo, _ := setupTest(t)
	ctx := t.Context()

	things := []*cachedThing{{Name: "a", N: 1}, {Name: "b", N: 2}}
	require.NoError(t, repo.SetJSON(ctx, "things", things, time.Minute))

	got, err := redisrepo.GetMany[cachedThing](repo.Default, ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, things, got)
}

func TestIncrByIfExists(t *testing.T) {
	t.Parallel()
	repo, mr := setupTest(t)
	ctx := t.Context()

	require.NoError(t, repo.IncrByIfExists(ctx, "counter", 1))
	assert.False(t, mr.Exists("counter"))

	require.NoError(t, repo.Set(ctx, "counter", 5, time.Minute))
	require.NoError(t, repo.IncrByIfExists(ctx, "counter", 1))
	require.NoError(t, repo.IncrByIfExists(ctx, "counter", -3))

	value, err := repo.Get(ctx, "counter").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)
}

func TestDelPattern(t *testing.T) {
	t.Parallel()
	repo, mr := setupTest(t)
	ctx := t.Context()

	keep := redisrepo.CommentsKey("course", "other", 10, 0)
	for _, key := range []string{
		redisrepo.CommentsKey("course", "c1", 10, 0),
		redisrepo.CommentsKey("course", "c1", 10, 10),
		keep,
	} {
		require.NoError(t, repo.Set(ctx, key, "x", time.Minute))
	}

	require.NoError(t, repo.DelPattern(ctx, redisrepo.CommentsPattern("course", "c1")))
	assert.Equal(t, []string{keep}, mr.Keys())

	require.NoError(t, repo.DelPattern(ctx, redisrepo.CommentsPattern("post", "none")))
}
