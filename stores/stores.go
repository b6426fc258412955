package stores

import (
	"errors"
	"regexp"

	jsoniter "github.com/json-iterator/go"
)

const (
	// Identifier of the store which keeps everything in process memory.
	NameMemory = "memory"

	// Identifier of Redis store.
	NameRedis = "redis"

	// Identifier of embedded Pebble key-value store.
	NamePebble = "pebble"

	// Identifier of SQLite store.
	NameSQLite = "sqlite"
)

// ErrStoreIsClosed is returned by tables of a closed store.
var ErrStoreIsClosed = errors.New("store is closed")

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	validTableName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)
)

// entryKey is a flat key of the entry for key-value stores.
func entryKey(table, partitionKey, rowKey string) string {
	return table + ":" + partitionKey + ":" + rowKey
}
