package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
)

// DefaultSQLitePath returns the default on-disk location of the SQLite
// database, creating the parent directory if needed.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "evotrack.db"
	}
	dir := filepath.Join(home, ".evotrack")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "evotrack.db")
}

// GetStatus implements the CommitStore interface.
func (s *Store) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}

	counts := []struct {
		table string
		dest  *int64
	}{
		{repositoriesTable, &status.Repositories},
		{commitsTable, &status.Commits},
		{identitiesTable, &status.Identities},
		{cacheTable, &status.CacheEntries},
	}
	for _, c := range counts {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(c.table, s.backend))
		if err := s.db.QueryRowContext(ctx, query).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	var lastUpdated sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(updated_at) FROM %s", quoteTableName(stateTable, s.backend))
	if err := s.db.QueryRowContext(ctx, query).Scan(&lastUpdated); err == nil && lastUpdated.Valid {
		status.LastUpdated = time.Unix(lastUpdated.Int64, 0).UTC()
	}
	return status, nil
}

// Clear removes all extracted data from every table. Intended for the
// CLI's store clear command; extraction rebuilds everything from scratch.
func (s *Store) Clear(ctx context.Context) error {
	tables := []string{cacheTable, stateTable, identitiesTable, commitsTable, repositoriesTable}
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, s.backend))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
