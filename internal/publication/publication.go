// Package publication defines the publication data model shared by the risk
// engine and the HTTP surface.
//
// A publication is any author-submitted action subject to risk evaluation:
// a post, a reply, a vote, a comment edit, or a moderation action. The engine
// receives publications that have already been signature-verified and
// decrypted upstream; the author public key on the publication is trusted.
package publication

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Type classifies a publication for velocity tracking.
type Type string

const (
	TypePost       Type = "post"
	TypeReply      Type = "reply"
	TypeVote       Type = "vote"
	TypeEdit       Type = "edit"
	TypeModeration Type = "moderation"
)

// Types lists all tracked publication types in a stable order.
var Types = []Type{TypePost, TypeReply, TypeVote, TypeEdit, TypeModeration}

// Errors
var (
	ErrNoAuthorKey = errors.New("publication: missing author public key")
	ErrNoPayload   = errors.New("publication: no recognizable payload")
)

// Karma is an author's post/reply score within one community, self-reported
// by that community and only partially trustworthy.
type Karma struct {
	PostScore  int64 `json:"postScore"`
	ReplyScore int64 `json:"replyScore"`
}

// Combined returns postScore + replyScore.
func (k Karma) Combined() int64 {
	return k.PostScore + k.ReplyScore
}

// Wallet is an author wallet attestation. Addresses are EVM addresses;
// ownership proofs are verified upstream, the engine only uses the address
// as a velocity key.
type Wallet struct {
	Chain   string `json:"chain,omitempty"`
	Address string `json:"address"`
}

// OAuthIdentity links an author to an external identity provider account.
type OAuthIdentity struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"externalId"`
}

// Publication is a single author-submitted action. Immutable once received;
// passed by value into the engine.
type Publication struct {
	// AuthorKey is the hex-encoded Ed25519 public key of the author.
	// This is the authoritative identity.
	AuthorKey string `json:"authorKey"`

	// AuthorAddress may be a domain name. Not cryptographically bound,
	// never used as an identity key.
	AuthorAddress string `json:"authorAddress,omitempty"`

	SubplebbitAddress string `json:"subplebbitAddress"`
	Type              Type   `json:"type"`

	// ParentCid distinguishes a post (absent) from a reply (present).
	ParentCid string `json:"parentCid,omitempty"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Link    string `json:"link,omitempty"`

	// Timestamp is the author-claimed creation time in unix seconds.
	Timestamp int64 `json:"timestamp"`

	// AuthorKarma is the author's reputation snapshot as seen by the
	// receiving community.
	AuthorKarma Karma `json:"authorKarma"`

	Wallets         []Wallet        `json:"wallets,omitempty"`
	OAuthIdentities []OAuthIdentity `json:"oauthIdentities,omitempty"`
}

// IsReply reports whether the publication is a reply to another comment.
func (p *Publication) IsReply() bool {
	return p.ParentCid != ""
}

// Validate checks the structural preconditions the engine relies on.
// A failure here indicates a defect in the upstream validation boundary,
// not a data-quality issue.
func (p *Publication) Validate() error {
	if p == nil {
		return ErrNoPayload
	}
	if strings.TrimSpace(p.AuthorKey) == "" {
		return ErrNoAuthorKey
	}
	switch p.Type {
	case TypePost, TypeReply, TypeVote, TypeEdit, TypeModeration:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrNoPayload, p.Type)
	}
	return nil
}

// NormalizeWallets returns the publication's wallet addresses in canonical
// EIP-55 checksum form, dropping entries that are not valid EVM addresses.
// Malformed attestations are a data-quality issue, not an error.
func (p *Publication) NormalizeWallets() []string {
	if len(p.Wallets) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Wallets))
	seen := make(map[string]bool, len(p.Wallets))
	for _, w := range p.Wallets {
		if !common.IsHexAddress(w.Address) {
			continue
		}
		addr := common.HexToAddress(w.Address).Hex()
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}
