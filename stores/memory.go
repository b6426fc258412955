package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/geolocator/geolocator/geolib"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemoryTableSize is a number of entries kept by each memory
// table if nothing else is set.
const DefaultMemoryTableSize = 100_000

type memoryTable struct {
	name  string
	cache *lru.Cache
}

func (m memoryTable) Get(ctx context.Context, partitionKey, rowKey string) (geolib.CacheEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return geolib.CacheEntry{}, false, err
	}

	value, ok := m.cache.Get(entryKey(m.name, partitionKey, rowKey))
	if !ok {
		return geolib.CacheEntry{}, false, nil
	}

	return value.(geolib.CacheEntry), true, nil
}

func (m memoryTable) Put(ctx context.Context, entry geolib.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.cache.Add(entryKey(m.name, entry.PartitionKey, entry.RowKey), entry)

	return nil
}

func (m memoryTable) Delete(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return m.cache.Remove(entryKey(m.name, partitionKey, rowKey)), nil
}

type memoryStore struct {
	size   int
	tables map[string]memoryTable
	mutex  sync.Mutex
}

func (m *memoryStore) Table(name string) geolib.Table {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if table, ok := m.tables[name]; ok {
		return table
	}

	// size is validated in constructor so this can't fail
	cache, _ := lru.New(m.size)
	table := memoryTable{
		name:  name,
		cache: cache,
	}
	m.tables[name] = table

	return table
}

func (m *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (m *memoryStore) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, v := range m.tables {
		v.cache.Purge()
	}

	return nil
}

// NewMemory returns a store which keeps entries in process memory. Each
// table is LRU cache of tableSize entries. This is useful for tests and
// for single-instance deployments where cache can be lost on restart.
func NewMemory(tableSize int) (geolib.Store, error) {
	if tableSize <= 0 {
		return nil, fmt.Errorf("incorrect table size %d", tableSize)
	}

	return &memoryStore{
		size:   tableSize,
		tables: map[string]memoryTable{},
	}, nil
}
