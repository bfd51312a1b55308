package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plebguard/plebguard/internal/publication"
)

// PostgresStore persists evaluations in PostgreSQL. Schema is managed by
// the migrations in migrations/.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed evaluation store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, eval *Evaluation) error {
	factorsJSON, err := json.Marshal(eval.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_evaluations (id, author_key, subplebbit_address, type, score, tier, factors, explanation, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		eval.ID,
		eval.AuthorKey,
		eval.SubplebbitAddress,
		string(eval.Type),
		eval.Score,
		eval.Tier,
		factorsJSON,
		eval.Explanation,
		eval.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorKey string, limit int) ([]*Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_key, subplebbit_address, type, score, tier, factors, explanation, evaluated_at
		FROM risk_evaluations
		WHERE author_key = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, authorKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Evaluation
	for rows.Next() {
		var (
			e           Evaluation
			typ         string
			factorsJSON []byte
			evaluatedAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.AuthorKey, &e.SubplebbitAddress, &typ, &e.Score, &e.Tier, &factorsJSON, &e.Explanation, &evaluatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.Type = publication.Type(typ)
		e.EvaluatedAt = evaluatedAt
		_ = json.Unmarshal(factorsJSON, &e.Factors)
		result = append(result, &e)
	}
	return result, rows.Err()
}
