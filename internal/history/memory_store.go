package history

import (
	"context"
	"sync"
	"time"

	"github.com/plebguard/plebguard/internal/publication"
)

// receivedPublication is one entry in the in-memory gateway log.
type receivedPublication struct {
	Type       publication.Type
	Wallets    []string
	ReceivedAt int64
}

// MemoryEngineStore is an in-memory EngineStore for demo/test use.
type MemoryEngineStore struct {
	mu         sync.RWMutex
	log        map[string][]receivedPublication // authorKey → publications
	walletLog  map[string][]receivedPublication // walletAddr → publications
	karma      map[string]map[string]KarmaSnapshot
	identities map[string]map[string]bool // provider/externalID → set of authors
}

// NewMemoryEngineStore creates an empty in-memory engine store.
func NewMemoryEngineStore() *MemoryEngineStore {
	return &MemoryEngineStore{
		log:        make(map[string][]receivedPublication),
		walletLog:  make(map[string][]receivedPublication),
		karma:      make(map[string]map[string]KarmaSnapshot),
		identities: make(map[string]map[string]bool),
	}
}

func identityKey(provider, externalID string) string {
	return provider + "/" + externalID
}

func (s *MemoryEngineStore) EarliestSeen(_ context.Context, authorKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.log[authorKey]
	if len(entries) == 0 {
		return 0, ErrNotFound
	}
	best := entries[0].ReceivedAt
	for _, e := range entries[1:] {
		if e.ReceivedAt < best {
			best = e.ReceivedAt
		}
	}
	return best, nil
}

func (s *MemoryEngineStore) KarmaBySubplebbit(_ context.Context, authorKey string) (map[string]KarmaSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.karma[authorKey]
	out := make(map[string]KarmaSnapshot, len(src))
	for sub, snap := range src {
		out[sub] = snap
	}
	return out, nil
}

func (s *MemoryEngineStore) CountByAuthorSince(_ context.Context, authorKey string, since int64) (TypeCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countSince(s.log[authorKey], since), nil
}

func (s *MemoryEngineStore) CountByWalletSince(_ context.Context, walletAddr string, since int64) (TypeCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countSince(s.walletLog[walletAddr], since), nil
}

func countSince(entries []receivedPublication, since int64) TypeCounts {
	counts := make(TypeCounts)
	for _, e := range entries {
		if e.ReceivedAt >= since {
			counts[e.Type]++
		}
	}
	return counts
}

func (s *MemoryEngineStore) SharedIdentityAuthors(_ context.Context, provider, externalID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := s.identities[identityKey(provider, externalID)]
	if len(authors) == 0 {
		return 0, ErrNotFound
	}
	return len(authors), nil
}

func (s *MemoryEngineStore) RecordPublication(_ context.Context, pub *publication.Publication, receivedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets := pub.NormalizeWallets()
	entry := receivedPublication{
		Type:       pub.Type,
		Wallets:    wallets,
		ReceivedAt: receivedAt.Unix(),
	}
	s.log[pub.AuthorKey] = append(s.log[pub.AuthorKey], entry)
	for _, w := range wallets {
		s.walletLog[w] = append(s.walletLog[w], entry)
	}
	for _, id := range pub.OAuthIdentities {
		key := identityKey(id.Provider, id.ExternalID)
		if s.identities[key] == nil {
			s.identities[key] = make(map[string]bool)
		}
		s.identities[key][pub.AuthorKey] = true
	}
	return nil
}

// SetKarma records a karma snapshot observed directly by the gateway.
func (s *MemoryEngineStore) SetKarma(authorKey, subplebbit string, snap KarmaSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.karma[authorKey] == nil {
		s.karma[authorKey] = make(map[string]KarmaSnapshot)
	}
	s.karma[authorKey][subplebbit] = snap
}

// MemoryIndexerStore is an in-memory IndexerStore for demo/test use. The
// real index is populated by a separate crawler; tests seed this directly.
type MemoryIndexerStore struct {
	mu       sync.RWMutex
	earliest map[string]int64
	karma    map[string]map[string]KarmaSnapshot
	counts   map[string]*NetworkCounts
}

// NewMemoryIndexerStore creates an empty in-memory indexer store.
func NewMemoryIndexerStore() *MemoryIndexerStore {
	return &MemoryIndexerStore{
		earliest: make(map[string]int64),
		karma:    make(map[string]map[string]KarmaSnapshot),
		counts:   make(map[string]*NetworkCounts),
	}
}

func (s *MemoryIndexerStore) EarliestFetched(_ context.Context, authorKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.earliest[authorKey]
	if !ok {
		return 0, ErrNotFound
	}
	return ts, nil
}

func (s *MemoryIndexerStore) KarmaBySubplebbit(_ context.Context, authorKey string) (map[string]KarmaSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.karma[authorKey]
	out := make(map[string]KarmaSnapshot, len(src))
	for sub, snap := range src {
		out[sub] = snap
	}
	return out, nil
}

func (s *MemoryIndexerStore) NetworkCounts(_ context.Context, authorKey string) (*NetworkCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts, ok := s.counts[authorKey]
	if !ok {
		return nil, ErrNotFound
	}
	c := *counts
	return &c, nil
}

// SetEarliestFetched seeds the earliest fetch time for an author.
func (s *MemoryIndexerStore) SetEarliestFetched(authorKey string, ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earliest[authorKey] = ts
}

// SetKarma seeds a crawled karma snapshot.
func (s *MemoryIndexerStore) SetKarma(authorKey, subplebbit string, snap KarmaSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.karma[authorKey] == nil {
		s.karma[authorKey] = make(map[string]KarmaSnapshot)
	}
	s.karma[authorKey][subplebbit] = snap
}

// SetNetworkCounts seeds moderation aggregates.
func (s *MemoryIndexerStore) SetNetworkCounts(authorKey string, counts NetworkCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[authorKey] = &counts
}
