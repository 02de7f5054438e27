package store

import (
	"context"
	"fmt"

	"github.com/Dhyanesh27/evotrack/schema"
)

// Get implements the CacheStore interface.
func (s *Store) Get(ctx context.Context, key string) ([]byte, int, int64, error) {
	query := rebind(fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s
		WHERE cache_key = ?`, quoteTableName(cacheTable, s.backend)), s.backend)

	var value []byte
	var version int
	var ts int64
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set implements the CacheStore interface with a backend-specific upsert.
func (s *Store) Set(ctx context.Context, key string, value []byte, version int, timestamp int64) error {
	table := quoteTableName(cacheTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, table)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)
			ON CONFLICT (cache_key) DO UPDATE SET
			cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, table)
	}
	_, err := s.db.ExecContext(ctx, rebind(query, s.backend), key, value, version, timestamp)
	return err
}
