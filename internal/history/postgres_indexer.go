package history

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresIndexerStore reads the network-wide index maintained by the
// crawler process. This store never writes; the crawler owns the tables.
type PostgresIndexerStore struct {
	db *sql.DB
}

// NewPostgresIndexerStore creates a PostgreSQL-backed indexer store.
func NewPostgresIndexerStore(db *sql.DB) *PostgresIndexerStore {
	return &PostgresIndexerStore{db: db}
}

func (s *PostgresIndexerStore) EarliestFetched(ctx context.Context, authorKey string) (int64, error) {
	var ts sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT first_fetched_at FROM indexed_authors WHERE author_key = $1
	`, authorKey).Scan(&ts)
	if err != nil {
		if err := errNoRows(err); err == ErrNotFound {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("query earliest fetched: %w", err)
	}
	if !ts.Valid {
		return 0, ErrNotFound
	}
	return ts.Time.Unix(), nil
}

func (s *PostgresIndexerStore) KarmaBySubplebbit(ctx context.Context, authorKey string) (map[string]KarmaSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subplebbit_address, post_score, reply_score, observed_at
		FROM indexed_karma
		WHERE author_key = $1
	`, authorKey)
	if err != nil {
		return nil, fmt.Errorf("query indexed karma: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanKarmaRows(rows)
}

func (s *PostgresIndexerStore) NetworkCounts(ctx context.Context, authorKey string) (*NetworkCounts, error) {
	var c NetworkCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT ban_count, removal_count, disapproval_count, unfetchable_count,
		       modqueue_accepted, modqueue_rejected, total_indexed_comments
		FROM indexed_authors
		WHERE author_key = $1
	`, authorKey).Scan(
		&c.BanCount,
		&c.RemovalCount,
		&c.DisapprovalCount,
		&c.UnfetchableCount,
		&c.ModqueueAccepted,
		&c.ModqueueRejected,
		&c.TotalIndexedComments,
	)
	if err != nil {
		if err := errNoRows(err); err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query network counts: %w", err)
	}
	return &c, nil
}
