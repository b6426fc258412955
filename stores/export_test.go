package stores

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/geolocator/geolocator/geolib"
)

// WriteRawPayload puts payload as is, bypassing CacheEntry encoding.
func WriteRawPayload(ctx context.Context, store geolib.Store, table, partitionKey, rowKey string, payload []byte) error {
	key := entryKey(table, partitionKey, rowKey)

	switch value := store.(type) {
	case redisStore:
		return value.client.Set(ctx, key, payload, value.ttl).Err()
	case *pebbleStore:
		return value.db.Set([]byte(key), payload, pebble.Sync)
	case *sqliteStore:
		if err := value.ensureTable(ctx, table); err != nil {
			return err
		}

		_, err := value.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO "+table+" (partition_key, row_key, updated_at, payload) VALUES (?, ?, 0, ?)",
			partitionKey, rowKey, payload)

		return err
	}

	return fmt.Errorf("%T keeps decoded entries only", store)
}
