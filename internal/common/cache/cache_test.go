package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"melodicamate/internal/common/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type songEntry struct {
	Title   string   `json:"title"`
	Numbers []string `json:"numbers"`
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	}), mr
}

func TestRedisCache_RoundTripAndTTL(t *testing.T) {
	client, mr := setupRedis(t)
	c := NewRedisCache(database.NewRedisFromClient(client), "song")
	ctx := context.Background()
	key := Key("song", "ode to joy")

	var got songEntry
	found, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := songEntry{Title: "Ode to Joy", Numbers: []string{"3", "3", "4", "5"}}
	require.NoError(t, c.SetJSON(ctx, key, want, time.Hour))

	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Hour)
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	client, mr := setupRedis(t)
	c := NewRedisCache(database.NewRedisFromClient(client), "song")
	key := Key("song", "broken")
	require.NoError(t, mr.Set(key, "{not json"))

	var got songEntry
	found, err := c.GetJSON(context.Background(), key, &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCache_ConnectionError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(database.NewRedisFromClient(client), "tts")
	key := Key("tts", "voice", "hello")

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))

	var got []byte
	found, err := c.GetJSON(context.Background(), key, &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	var dest songEntry
	found, err := c.GetJSON(context.Background(), "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.SetJSON(context.Background(), "k", dest, time.Minute))
}

func TestKey(t *testing.T) {
	a := Key("song", "twinkle")
	b := Key("song", "twinkle")
	c := Key("tts", "twinkle")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "melodicamate:song:")
	assert.NotEqual(t, Key("tts", "ab", "c"), Key("tts", "a", "bc"))
}
