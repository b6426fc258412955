package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geolocator/geolocator/geolib"
	"github.com/redis/go-redis/v9"
)

type redisTable struct {
	name   string
	client redis.UniversalClient
	ttl    time.Duration
}

func (r redisTable) Get(ctx context.Context, partitionKey, rowKey string) (geolib.CacheEntry, bool, error) {
	entry := geolib.CacheEntry{}

	data, err := r.client.Get(ctx, entryKey(r.name, partitionKey, rowKey)).Bytes()

	switch {
	case errors.Is(err, redis.Nil):
		return entry, false, nil
	case err != nil:
		return entry, false, fmt.Errorf("cannot get a value: %w", err)
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return geolib.CacheEntry{}, false, fmt.Errorf("cannot decode a value: %w: %w", geolib.ErrCorruptedEntry, err)
	}

	return entry, true, nil
}

func (r redisTable) Put(ctx context.Context, entry geolib.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cannot encode a value: %w", err)
	}

	key := entryKey(r.name, entry.PartitionKey, entry.RowKey)

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cannot set a value: %w", err)
	}

	return nil
}

func (r redisTable) Delete(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	deleted, err := r.client.Del(ctx, entryKey(r.name, partitionKey, rowKey)).Result()
	if err != nil {
		return false, fmt.Errorf("cannot delete a value: %w", err)
	}

	return deleted > 0, nil
}

type redisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func (r redisStore) Table(name string) geolib.Table {
	return redisTable{
		name:   name,
		client: r.client,
		ttl:    r.ttl,
	}
}

func (r redisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r redisStore) Close() error {
	return r.client.Close()
}

// NewRedis returns a store on top of Redis. Entries expire after ttl.
// Zero ttl means that entries live forever and only insights max age
// limits their usage.
func NewRedis(client redis.UniversalClient, ttl time.Duration) geolib.Store {
	return redisStore{
		client: client,
		ttl:    ttl,
	}
}
