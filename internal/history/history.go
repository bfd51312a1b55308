// Package history provides read-only access to an author's observed history.
//
// Two independent sources exist: the gateway's own transactional log of
// publications and challenges it has seen directly ("engine" data), and a
// separately maintained store populated by a network crawler ("indexer"
// data: bans, removals, modqueue outcomes, karma per community). The
// Service type merges both into single logical views so factor calculators
// never see the two-source split.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/plebguard/plebguard/internal/publication"
)

// ErrNotFound is returned by stores when an author has no record at all.
var ErrNotFound = errors.New("history: not found")

// KarmaSnapshot is a per-community karma observation with the time the
// observing source recorded it. Karma is a snapshot, not a running total;
// reconciliation between sources favors recency.
type KarmaSnapshot struct {
	publication.Karma
	ObservedAt int64 // unix seconds
}

// NetworkCounts aggregates an author's network-wide moderation history as
// seen by the indexer.
type NetworkCounts struct {
	BanCount             int64 `json:"banCount"`
	RemovalCount         int64 `json:"removalCount"`
	DisapprovalCount     int64 `json:"disapprovalCount"`
	UnfetchableCount     int64 `json:"unfetchableCount"`
	ModqueueAccepted     int64 `json:"modqueueAccepted"`
	ModqueueRejected     int64 `json:"modqueueRejected"`
	TotalIndexedComments int64 `json:"totalIndexedComments"`
}

// TypeCounts holds publication counts per type within some window.
type TypeCounts map[publication.Type]int

// Total sums counts across all types.
func (tc TypeCounts) Total() int {
	n := 0
	for _, c := range tc {
		n += c
	}
	return n
}

// EngineStore answers queries over publications the gateway observed
// directly. All timestamps are generated by the gateway itself, never
// copied from author-claimed fields.
type EngineStore interface {
	// EarliestSeen returns the receipt time of the author's first
	// publication. ErrNotFound if the author has never been seen.
	EarliestSeen(ctx context.Context, authorKey string) (int64, error)

	// KarmaBySubplebbit returns the most recent karma snapshot the gateway
	// observed for each community.
	KarmaBySubplebbit(ctx context.Context, authorKey string) (map[string]KarmaSnapshot, error)

	// CountByAuthorSince returns publication counts per type received at
	// or after the given unix time.
	CountByAuthorSince(ctx context.Context, authorKey string, since int64) (TypeCounts, error)

	// CountByWalletSince is CountByAuthorSince keyed by attested wallet
	// address instead of author key.
	CountByWalletSince(ctx context.Context, walletAddr string, since int64) (TypeCounts, error)

	// SharedIdentityAuthors returns how many distinct local authors have
	// linked the given external identity.
	SharedIdentityAuthors(ctx context.Context, provider, externalID string) (int, error)

	// RecordPublication appends a received publication to the log.
	RecordPublication(ctx context.Context, pub *publication.Publication, receivedAt time.Time) error
}

// IndexerStore answers queries over the network-wide crawled index. The
// index is maintained by a separate crawler process; this interface is
// read-only.
type IndexerStore interface {
	// EarliestFetched returns the fetch time of the author's first indexed
	// comment. ErrNotFound if the author was never indexed.
	EarliestFetched(ctx context.Context, authorKey string) (int64, error)

	// KarmaBySubplebbit returns the most recent crawled karma snapshot per
	// community.
	KarmaBySubplebbit(ctx context.Context, authorKey string) (map[string]KarmaSnapshot, error)

	// NetworkCounts returns the author's moderation aggregates.
	// ErrNotFound if the author was never indexed.
	NetworkCounts(ctx context.Context, authorKey string) (*NetworkCounts, error)
}
