package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/plebguard/plebguard/internal/publication"
)

// Service presents a single, source-agnostic view of an author's history.
//
// Merge rules: timestamps take the oldest observation across sources; karma
// snapshots take the most recent per community. A failure from either store
// is logged and treated as that source having no data, so an unhealthy
// indexer degrades factor inputs instead of aborting an evaluation.
type Service struct {
	engine  EngineStore
	indexer IndexerStore
	logger  *slog.Logger
}

// NewService creates a combined history service. Either store may be nil,
// in which case that source simply never has data.
func NewService(engine EngineStore, indexer IndexerStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, indexer: indexer, logger: logger}
}

// EarliestTimestamp returns the oldest server-observed activity time for the
// author across both sources, and false if neither source has any record.
func (s *Service) EarliestTimestamp(ctx context.Context, authorKey string) (int64, bool) {
	var best int64
	found := false

	if s.engine != nil {
		ts, err := s.engine.EarliestSeen(ctx, authorKey)
		switch {
		case err == nil:
			best = ts
			found = true
		case !errors.Is(err, ErrNotFound):
			s.logger.Warn("engine store earliest-seen query failed", "author", authorKey, "error", err)
		}
	}

	if s.indexer != nil {
		ts, err := s.indexer.EarliestFetched(ctx, authorKey)
		switch {
		case err == nil:
			if !found || ts < best {
				best = ts
			}
			found = true
		case !errors.Is(err, ErrNotFound):
			s.logger.Warn("indexer store earliest-fetched query failed", "author", authorKey, "error", err)
		}
	}

	return best, found
}

// KarmaBySubplebbit merges per-community karma from both sources. Where both
// have a snapshot for the same community the most recent one wins.
func (s *Service) KarmaBySubplebbit(ctx context.Context, authorKey string) map[string]KarmaSnapshot {
	merged := make(map[string]KarmaSnapshot)

	if s.engine != nil {
		m, err := s.engine.KarmaBySubplebbit(ctx, authorKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("engine store karma query failed", "author", authorKey, "error", err)
		}
		for sub, snap := range m {
			merged[sub] = snap
		}
	}

	if s.indexer != nil {
		m, err := s.indexer.KarmaBySubplebbit(ctx, authorKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("indexer store karma query failed", "author", authorKey, "error", err)
		}
		for sub, snap := range m {
			if existing, ok := merged[sub]; !ok || snap.ObservedAt > existing.ObservedAt {
				merged[sub] = snap
			}
		}
	}

	return merged
}

// NetworkCounts returns the author's network-wide moderation aggregates, or
// nil if the indexer has no record (or is unavailable).
func (s *Service) NetworkCounts(ctx context.Context, authorKey string) *NetworkCounts {
	if s.indexer == nil {
		return nil
	}
	counts, err := s.indexer.NetworkCounts(ctx, authorKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("indexer store counts query failed", "author", authorKey, "error", err)
		}
		return nil
	}
	return counts
}

// AuthorRates returns the author's publication counts per type over the last
// hour and the last 24 hours relative to now. The second return is false
// when the engine store could not be queried at all.
func (s *Service) AuthorRates(ctx context.Context, authorKey string, now int64) (lastHour, lastDay TypeCounts, ok bool) {
	if s.engine == nil {
		return nil, nil, false
	}
	hour, err := s.engine.CountByAuthorSince(ctx, authorKey, now-3600)
	if err != nil {
		s.logger.Warn("engine store hourly count query failed", "author", authorKey, "error", err)
		return nil, nil, false
	}
	day, err := s.engine.CountByAuthorSince(ctx, authorKey, now-86400)
	if err != nil {
		s.logger.Warn("engine store daily count query failed", "author", authorKey, "error", err)
		return nil, nil, false
	}
	return hour, day, true
}

// WalletRates is AuthorRates keyed by attested wallet address.
func (s *Service) WalletRates(ctx context.Context, walletAddr string, now int64) (lastHour, lastDay TypeCounts, ok bool) {
	if s.engine == nil {
		return nil, nil, false
	}
	hour, err := s.engine.CountByWalletSince(ctx, walletAddr, now-3600)
	if err != nil {
		s.logger.Warn("engine store wallet hourly count query failed", "wallet", walletAddr, "error", err)
		return nil, nil, false
	}
	day, err := s.engine.CountByWalletSince(ctx, walletAddr, now-86400)
	if err != nil {
		s.logger.Warn("engine store wallet daily count query failed", "wallet", walletAddr, "error", err)
		return nil, nil, false
	}
	return hour, day, true
}

// SharedIdentityAuthors returns how many local authors share the external
// identity, defaulting to 1 (unshared) when the store cannot answer.
func (s *Service) SharedIdentityAuthors(ctx context.Context, provider, externalID string) int {
	if s.engine == nil {
		return 1
	}
	n, err := s.engine.SharedIdentityAuthors(ctx, provider, externalID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("engine store shared-identity query failed", "provider", provider, "error", err)
		}
		return 1
	}
	if n < 1 {
		return 1
	}
	return n
}

// RecordPublication appends a received publication to the gateway's own log
// so age and velocity accrue for future evaluations. Best-effort.
func (s *Service) RecordPublication(ctx context.Context, pub *publication.Publication, receivedAt time.Time) error {
	if s.engine == nil {
		return nil
	}
	return s.engine.RecordPublication(ctx, pub, receivedAt)
}
