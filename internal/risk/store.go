package risk

import (
	"context"
	"time"

	"github.com/plebguard/plebguard/internal/publication"
)

// Evaluation is one persisted evaluation outcome: the score, the assigned
// tier, and the factor breakdown. Kept for operator review and audit.
type Evaluation struct {
	ID                string           `json:"id"`
	AuthorKey         string           `json:"authorKey"`
	SubplebbitAddress string           `json:"subplebbitAddress"`
	Type              publication.Type `json:"type"`
	Score             float64          `json:"score"`
	Tier              string           `json:"tier"`
	Factors           []FactorResult   `json:"factors"`
	Explanation       string           `json:"explanation"`
	EvaluatedAt       time.Time        `json:"evaluatedAt"`
}

// Store persists evaluations for audit trail.
type Store interface {
	Record(ctx context.Context, eval *Evaluation) error
	ListByAuthor(ctx context.Context, authorKey string, limit int) ([]*Evaluation, error)
}
