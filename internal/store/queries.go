package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
)

// UpsertRepository implements the CommitStore interface.
func (s *Store) UpsertRepository(ctx context.Context, repo schema.Repository) error {
	table := quoteTableName(repositoriesTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, name, created_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE name = new.name`, table)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, name, created_at) VALUES (?, ?, ?)
			ON CONFLICT (repo_id) DO UPDATE SET name = EXCLUDED.name`, table)
	}
	_, err := s.db.ExecContext(ctx, rebind(query, s.backend), repo.ID, repo.Name, time.Now().Unix())
	return err
}

// UpsertCommits implements the CommitStore interface. Writes are
// idempotent on (repo_id, hash): a retried write of an already-present
// commit is a no-op, not an error. Returns the number of rows inserted.
func (s *Store) UpsertCommits(ctx context.Context, commits []schema.NormalizedCommit) (int, error) {
	if len(commits) == 0 {
		return 0, nil
	}

	table := quoteTableName(commitsTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT IGNORE INTO %s
			(repo_id, hash, author_id, ts, subject, insertions, deletions, files_changed, is_merge)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s
			(repo_id, hash, author_id, ts, subject, insertions, deletions, files_changed, is_merge)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (repo_id, hash) DO NOTHING`, table)
	}
	query = rebind(query, s.backend)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, c := range commits {
		res, err := stmt.ExecContext(ctx,
			c.RepoID, c.Hash, c.AuthorID, c.Timestamp.Unix(), c.Subject,
			c.Insertions, c.Deletions, c.FilesChanged, c.IsMerge)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert commit %s: %w", c.Hash, err)
		}
		if rows, err := res.RowsAffected(); err == nil {
			inserted += int(rows)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpsertIdentities implements the CommitStore interface. Alias lists of
// existing identities are replaced; identities are never removed.
func (s *Store) UpsertIdentities(ctx context.Context, repoID string, identities []schema.ContributorIdentity) error {
	if len(identities) == 0 {
		return nil
	}

	table := quoteTableName(identitiesTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, identity_id, display_name, aliases, seq) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE display_name = new.display_name, aliases = new.aliases, seq = new.seq`, table)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, identity_id, display_name, aliases, seq) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (repo_id, identity_id) DO UPDATE SET
			display_name = EXCLUDED.display_name, aliases = EXCLUDED.aliases, seq = EXCLUDED.seq`, table)
	}
	query = rebind(query, s.backend)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range identities {
		aliases, err := json.Marshal(id.Aliases)
		if err != nil {
			return fmt.Errorf("failed to encode aliases for %s: %w", id.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, repoID, id.ID, id.DisplayName, string(aliases), id.Seq); err != nil {
			return fmt.Errorf("failed to upsert identity %s: %w", id.ID, err)
		}
	}
	return tx.Commit()
}

// MergeIdentities implements the CommitStore interface. Both statements
// run in one transaction so commits never reference a removed identity.
func (s *Store) MergeIdentities(ctx context.Context, repoID, fromID, toID string) error {
	update := rebind(fmt.Sprintf(`UPDATE %s SET author_id = ? WHERE repo_id = ? AND author_id = ?`,
		quoteTableName(commitsTable, s.backend)), s.backend)
	remove := rebind(fmt.Sprintf(`DELETE FROM %s WHERE repo_id = ? AND identity_id = ?`,
		quoteTableName(identitiesTable, s.backend)), s.backend)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, update, toID, repoID, fromID); err != nil {
		return fmt.Errorf("failed to re-point commits from %s to %s: %w", fromID, toID, err)
	}
	if _, err := tx.ExecContext(ctx, remove, repoID, fromID); err != nil {
		return fmt.Errorf("failed to remove merged identity %s: %w", fromID, err)
	}
	return tx.Commit()
}

// ListCommitHashes implements the CommitStore interface.
func (s *Store) ListCommitHashes(ctx context.Context, repoID string) (map[string]struct{}, error) {
	query := rebind(fmt.Sprintf(`SELECT hash FROM %s WHERE repo_id = ?`, quoteTableName(commitsTable, s.backend)), s.backend)
	rows, err := s.db.QueryContext(ctx, query, repoID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		hashes[hash] = struct{}{}
	}
	return hashes, rows.Err()
}

// ListIdentities implements the CommitStore interface.
func (s *Store) ListIdentities(ctx context.Context, repoID string) ([]schema.ContributorIdentity, error) {
	query := rebind(fmt.Sprintf(`SELECT identity_id, display_name, aliases, seq FROM %s
		WHERE repo_id = ? ORDER BY identity_id`, quoteTableName(identitiesTable, s.backend)), s.backend)
	rows, err := s.db.QueryContext(ctx, query, repoID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var identities []schema.ContributorIdentity
	for rows.Next() {
		var id schema.ContributorIdentity
		var aliases string
		if err := rows.Scan(&id.ID, &id.DisplayName, &aliases, &id.Seq); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aliases), &id.Aliases); err != nil {
			return nil, fmt.Errorf("failed to decode aliases for %s: %w", id.ID, err)
		}
		identities = append(identities, id)
	}
	return identities, rows.Err()
}

// GetExtractionState implements the CommitStore interface. Returns nil
// for a repository that has never been extracted.
func (s *Store) GetExtractionState(ctx context.Context, repoID string) (*schema.ExtractionState, error) {
	query := rebind(fmt.Sprintf(`SELECT tip_hash, commit_count, updated_at FROM %s
		WHERE repo_id = ?`, quoteTableName(stateTable, s.backend)), s.backend)

	state := schema.ExtractionState{RepoID: repoID}
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, query, repoID).Scan(&state.TipHash, &state.CommitCount, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	state.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &state, nil
}

// SetExtractionState implements the CommitStore interface.
func (s *Store) SetExtractionState(ctx context.Context, state schema.ExtractionState) error {
	table := quoteTableName(stateTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, tip_hash, commit_count, updated_at) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE tip_hash = new.tip_hash, commit_count = new.commit_count, updated_at = new.updated_at`, table)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, tip_hash, commit_count, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (repo_id) DO UPDATE SET
			tip_hash = EXCLUDED.tip_hash, commit_count = EXCLUDED.commit_count, updated_at = EXCLUDED.updated_at`, table)
	}
	_, err := s.db.ExecContext(ctx, rebind(query, s.backend),
		state.RepoID, state.TipHash, state.CommitCount, state.UpdatedAt.Unix())
	return err
}

// QueryCommits implements the CommitStore interface. Results are ordered
// by timestamp then hash so downstream aggregation is deterministic.
func (s *Store) QueryCommits(ctx context.Context, repoID string, filter schema.AnalyticsFilter) ([]schema.NormalizedCommit, error) {
	query := fmt.Sprintf(`SELECT repo_id, hash, author_id, ts, subject, insertions, deletions, files_changed, is_merge
		FROM %s WHERE repo_id = ?`, quoteTableName(commitsTable, s.backend))
	args := []any{repoID}

	if !filter.Since.IsZero() {
		query += " AND ts >= ?"
		args = append(args, filter.Since.Unix())
	}
	if !filter.Until.IsZero() {
		query += " AND ts <= ?"
		args = append(args, filter.Until.Unix())
	}
	if filter.AuthorID != "" {
		query += " AND author_id = ?"
		args = append(args, filter.AuthorID)
	}
	query += " ORDER BY ts, hash"

	rows, err := s.db.QueryContext(ctx, rebind(query, s.backend), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var commits []schema.NormalizedCommit
	for rows.Next() {
		var c schema.NormalizedCommit
		var ts int64
		if err := rows.Scan(&c.RepoID, &c.Hash, &c.AuthorID, &ts, &c.Subject,
			&c.Insertions, &c.Deletions, &c.FilesChanged, &c.IsMerge); err != nil {
			return nil, err
		}
		c.Timestamp = time.Unix(ts, 0).UTC()
		commits = append(commits, c)
	}
	return commits, rows.Err()
}
