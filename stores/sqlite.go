package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/geolocator/geolocator/geolib"
	_ "modernc.org/sqlite"
)

type sqliteTable struct {
	name  string
	store *sqliteStore
}

func (s sqliteTable) Get(ctx context.Context, partitionKey, rowKey string) (geolib.CacheEntry, bool, error) {
	entry := geolib.CacheEntry{}

	if err := s.store.ensureTable(ctx, s.name); err != nil {
		return entry, false, err
	}

	var data []byte

	err := s.store.db.QueryRowContext(ctx,
		"SELECT payload FROM "+s.name+" WHERE partition_key = ? AND row_key = ?",
		partitionKey, rowKey).Scan(&data)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return entry, false, nil
	case err != nil:
		return entry, false, fmt.Errorf("cannot select a value: %w", err)
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return geolib.CacheEntry{}, false, fmt.Errorf("cannot decode a value: %w: %w", geolib.ErrCorruptedEntry, err)
	}

	return entry, true, nil
}

func (s sqliteTable) Put(ctx context.Context, entry geolib.CacheEntry) error {
	if err := s.store.ensureTable(ctx, s.name); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cannot encode a value: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+s.name+" (partition_key, row_key, updated_at, payload) VALUES (?, ?, ?, ?)",
		entry.PartitionKey, entry.RowKey, entry.Timestamp.Unix(), data)
	if err != nil {
		return fmt.Errorf("cannot insert a value: %w", err)
	}

	return nil
}

func (s sqliteTable) Delete(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	if err := s.store.ensureTable(ctx, s.name); err != nil {
		return false, err
	}

	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM "+s.name+" WHERE partition_key = ? AND row_key = ?",
		partitionKey, rowKey)
	if err != nil {
		return false, fmt.Errorf("cannot delete a value: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cannot get a number of deleted rows: %w", err)
	}

	return affected > 0, nil
}

type sqliteStore struct {
	db     *sql.DB
	mutex  sync.Mutex
	tables map[string]bool
}

func (s *sqliteStore) Table(name string) geolib.Table {
	return sqliteTable{
		name:  name,
		store: s,
	}
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// ensureTable creates a table on the first access. Table names are
// interpolated into queries so they are checked here.
func (s *sqliteStore) ensureTable(ctx context.Context, name string) error {
	if !validTableName.MatchString(name) {
		return fmt.Errorf("incorrect table name %q", name)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tables[name] {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+name+` (
		partition_key TEXT NOT NULL,
		row_key TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (partition_key, row_key)
	)`)
	if err != nil {
		return fmt.Errorf("cannot create table %s: %w", name, err)
	}

	s.tables[name] = true

	return nil
}

// NewSQLite opens SQLite database by the given DSN. It can be a path to
// the file or :memory:.
func NewSQLite(dsn string) (geolib.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite database: %w", err)
	}

	// sqlite has a single writer anyway. Also, each connection to
	// :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return &sqliteStore{
		db:     db,
		tables: map[string]bool{},
	}, nil
}
