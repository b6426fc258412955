package stores

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/geolocator/geolocator/geolib"
)

type pebbleTable struct {
	name  string
	store *pebbleStore
}

func (p pebbleTable) Get(ctx context.Context, partitionKey, rowKey string) (geolib.CacheEntry, bool, error) {
	entry := geolib.CacheEntry{}

	if err := p.store.check(ctx); err != nil {
		return entry, false, err
	}

	data, ok, err := p.store.get([]byte(entryKey(p.name, partitionKey, rowKey)))
	if err != nil || !ok {
		return entry, false, err
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return geolib.CacheEntry{}, false, fmt.Errorf("cannot decode a value: %w: %w", geolib.ErrCorruptedEntry, err)
	}

	return entry, true, nil
}

func (p pebbleTable) Put(ctx context.Context, entry geolib.CacheEntry) error {
	if err := p.store.check(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cannot encode a value: %w", err)
	}

	key := []byte(entryKey(p.name, entry.PartitionKey, entry.RowKey))

	if err := p.store.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("cannot set a value: %w", err)
	}

	return nil
}

func (p pebbleTable) Delete(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	if err := p.store.check(ctx); err != nil {
		return false, err
	}

	key := []byte(entryKey(p.name, partitionKey, rowKey))

	// pebble deletes are blind so we have to check a presence first
	_, ok, err := p.store.get(key)
	if err != nil || !ok {
		return false, err
	}

	if err := p.store.db.Delete(key, pebble.Sync); err != nil {
		return false, fmt.Errorf("cannot delete a value: %w", err)
	}

	return true, nil
}

type pebbleStore struct {
	db     *pebble.DB
	closed atomic.Bool
}

func (p *pebbleStore) Table(name string) geolib.Table {
	return pebbleTable{
		name:  name,
		store: p,
	}
}

func (p *pebbleStore) Ping(ctx context.Context) error {
	return p.check(ctx)
}

func (p *pebbleStore) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	return p.db.Close()
}

func (p *pebbleStore) check(ctx context.Context) error {
	if p.closed.Load() {
		return ErrStoreIsClosed
	}

	return ctx.Err()
}

// get returns a copy of the value: pebble owns returned slice only
// until closer is closed.
func (p *pebbleStore) get(key []byte) ([]byte, bool, error) {
	value, closer, err := p.db.Get(key)

	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("cannot get a value: %w", err)
	}

	defer closer.Close()

	return append([]byte(nil), value...), true, nil
}

// NewPebble opens (or creates) embedded Pebble database at the given
// directory. options may be nil.
func NewPebble(path string, options *pebble.Options) (geolib.Store, error) {
	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, fmt.Errorf("cannot open pebble database at %s: %w", path, err)
	}

	return &pebbleStore{db: db}, nil
}
