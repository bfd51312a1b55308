package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plebguard/plebguard/internal/idgen"
	"github.com/plebguard/plebguard/internal/publication"
)

// PostgresEngineStore is the PostgreSQL-backed gateway transaction log.
// Schema lives in migrations/.
type PostgresEngineStore struct {
	db *sql.DB
}

// NewPostgresEngineStore creates a PostgreSQL-backed engine store.
func NewPostgresEngineStore(db *sql.DB) *PostgresEngineStore {
	return &PostgresEngineStore{db: db}
}

func (s *PostgresEngineStore) EarliestSeen(ctx context.Context, authorKey string) (int64, error) {
	var ts sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(received_at) FROM publications WHERE author_key = $1
	`, authorKey).Scan(&ts)
	if err != nil {
		return 0, fmt.Errorf("query earliest seen: %w", err)
	}
	if !ts.Valid {
		return 0, ErrNotFound
	}
	return ts.Time.Unix(), nil
}

func (s *PostgresEngineStore) KarmaBySubplebbit(ctx context.Context, authorKey string) (map[string]KarmaSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subplebbit_address, post_score, reply_score, observed_at
		FROM author_karma
		WHERE author_key = $1
	`, authorKey)
	if err != nil {
		return nil, fmt.Errorf("query author karma: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanKarmaRows(rows)
}

func (s *PostgresEngineStore) CountByAuthorSince(ctx context.Context, authorKey string, since int64) (TypeCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*)
		FROM publications
		WHERE author_key = $1 AND received_at >= to_timestamp($2)
		GROUP BY type
	`, authorKey, since)
	if err != nil {
		return nil, fmt.Errorf("query author counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTypeCounts(rows)
}

func (s *PostgresEngineStore) CountByWalletSince(ctx context.Context, walletAddr string, since int64) (TypeCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.type, COUNT(*)
		FROM publications p
		JOIN publication_wallets w ON w.publication_id = p.id
		WHERE w.address = $1 AND p.received_at >= to_timestamp($2)
		GROUP BY p.type
	`, walletAddr, since)
	if err != nil {
		return nil, fmt.Errorf("query wallet counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTypeCounts(rows)
}

func (s *PostgresEngineStore) SharedIdentityAuthors(ctx context.Context, provider, externalID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT author_key)
		FROM oauth_identities
		WHERE provider = $1 AND external_id = $2
	`, provider, externalID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query shared identity authors: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

func (s *PostgresEngineStore) RecordPublication(ctx context.Context, pub *publication.Publication, receivedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record publication: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := idgen.WithPrefix("pub_")
	_, err = tx.ExecContext(ctx, `
		INSERT INTO publications (id, author_key, subplebbit_address, type, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, pub.AuthorKey, pub.SubplebbitAddress, string(pub.Type), receivedAt)
	if err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}

	for _, addr := range pub.NormalizeWallets() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO publication_wallets (publication_id, address)
			VALUES ($1, $2)
		`, id, addr); err != nil {
			return fmt.Errorf("insert publication wallet: %w", err)
		}
	}

	for _, ident := range pub.OAuthIdentities {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO oauth_identities (provider, external_id, author_key)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, ident.Provider, ident.ExternalID, pub.AuthorKey); err != nil {
			return fmt.Errorf("insert oauth identity: %w", err)
		}
	}

	// The live snapshot carried on the publication is the freshest karma
	// observation the gateway has for the receiving community.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO author_karma (author_key, subplebbit_address, post_score, reply_score, observed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (author_key, subplebbit_address) DO UPDATE
		SET post_score = EXCLUDED.post_score,
		    reply_score = EXCLUDED.reply_score,
		    observed_at = EXCLUDED.observed_at
	`, pub.AuthorKey, pub.SubplebbitAddress, pub.AuthorKarma.PostScore, pub.AuthorKarma.ReplyScore, receivedAt)
	if err != nil {
		return fmt.Errorf("upsert author karma: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record publication: %w", err)
	}
	return nil
}

func scanKarmaRows(rows *sql.Rows) (map[string]KarmaSnapshot, error) {
	out := make(map[string]KarmaSnapshot)
	for rows.Next() {
		var (
			sub        string
			snap       KarmaSnapshot
			observedAt time.Time
		)
		if err := rows.Scan(&sub, &snap.PostScore, &snap.ReplyScore, &observedAt); err != nil {
			return nil, fmt.Errorf("scan karma row: %w", err)
		}
		snap.ObservedAt = observedAt.Unix()
		out[sub] = snap
	}
	return out, rows.Err()
}

func scanTypeCounts(rows *sql.Rows) (TypeCounts, error) {
	counts := make(TypeCounts)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[publication.Type(typ)] = n
	}
	return counts, rows.Err()
}

// errNoRows converts sql.ErrNoRows to the package sentinel.
func errNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
