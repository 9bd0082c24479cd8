package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrointel/macrointel/internal/regime"
)

func sampleSnapshot() *regime.Snapshot {
	return &regime.Snapshot{
		ID:             "a2f1c6de-0000-4000-8000-000000000001",
		TotalScore:     62.5,
		Classification: regime.Greed,
		Timestamp:      time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC),
	}
}

func TestCacheSetGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewLatestCache(client, time.Minute)

	snapshot := sampleSnapshot()
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	mock.ExpectSet(latestKey, data, time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(context.Background(), snapshot))

	mock.ExpectGet(latestKey).SetVal(string(data))
	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snapshot.ID, got.ID)
	assert.Equal(t, snapshot.TotalScore, got.TotalScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewLatestCache(client, time.Minute)

	mock.ExpectGet(latestKey).RedisNil()

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheCorruptEntry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewLatestCache(client, 0)

	mock.ExpectGet(latestKey).SetVal("{not json")

	_, err := cache.Get(context.Background())
	assert.Error(t, err)
}
