package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plebguard/plebguard/internal/publication"
)

func TestSocialSkipsWhenDisabled(t *testing.T) {
	pub := testPublication()
	pub.OAuthIdentities = []publication.OAuthIdentity{{Provider: "google", ExternalID: "u1"}}
	ec, _, _ := testContext(pub)
	// No configured providers at all.

	r := socialFactor(context.Background(), ec, 0.05)
	assert.Zero(t, r.Weight)
}

func TestSocialUnverifiedIsWorstCase(t *testing.T) {
	ec, _, _ := testContext(testPublication())
	ec.OAuthBaseCredibility = map[string]float64{"google": 1.0}

	r := socialFactor(context.Background(), ec, 0.05)
	assert.Equal(t, socialUnverifiedScore, r.Score)
	assert.Equal(t, 0.05, r.Weight, "verification is offered; declining it is a signal")
}

func TestSocialUnknownProviderIgnored(t *testing.T) {
	pub := testPublication()
	pub.OAuthIdentities = []publication.OAuthIdentity{{Provider: "myspace", ExternalID: "u1"}}
	ec, _, _ := testContext(pub)
	ec.OAuthBaseCredibility = map[string]float64{"google": 1.0}

	r := socialFactor(context.Background(), ec, 0.05)
	assert.Equal(t, socialUnverifiedScore, r.Score, "identities from unconfigured providers carry no credibility")
}

func TestSocialSingleIdentity(t *testing.T) {
	pub := testPublication()
	pub.OAuthIdentities = []publication.OAuthIdentity{{Provider: "google", ExternalID: "u1"}}
	ec, _, _ := testContext(pub)
	ec.OAuthBaseCredibility = map[string]float64{"google": 1.0}

	r := socialFactor(context.Background(), ec, 0.05)
	assert.InDelta(t, 0.40, r.Score, 1e-9)
}

func TestSocialTwoIdentitiesDecay(t *testing.T) {
	pub := testPublication()
	pub.OAuthIdentities = []publication.OAuthIdentity{
		{Provider: "google", ExternalID: "u1"},
		{Provider: "github", ExternalID: "u2"},
	}
	ec, _, _ := testContext(pub)
	ec.OAuthBaseCredibility = map[string]float64{"google": 1.0, "github": 1.0}

	// Combined credibility 1.0 + 0.7 = 1.7.
	r := socialFactor(context.Background(), ec, 0.05)
	assert.InDelta(t, 0.1585, r.Score, 1e-9)
}

func TestSocialCombinedCredibilityCapped(t *testing.T) {
	pub := testPublication()
	providers := map[string]float64{}
	for _, p := range []string{"google", "github", "twitter", "discord", "apple", "facebook"} {
		providers[p] = 1.0
		pub.OAuthIdentities = append(pub.OAuthIdentities, publication.OAuthIdentity{Provider: p, ExternalID: "u-" + p})
	}
	ec, _, _ := testContext(pub)
	ec.OAuthBaseCredibility = providers

	// Six max-credibility identities sum to 2.94 before the cap; the cap
	// holds combined credibility to 2.5.
	r := socialFactor(context.Background(), ec, 0.05)
	assert.InDelta(t, credibilityToRisk(socialCredibilityCap), r.Score, 1e-9)
	assert.Greater(t, r.Score, 0.0)
}

// The same external account farmed across several local authors is
// discounted by 1/sqrt(n).
func TestSocialSharedIdentityDiscount(t *testing.T) {
	pub := testPublication()
	pub.OAuthIdentities = []publication.OAuthIdentity{{Provider: "google", ExternalID: "farmed"}}
	ec, engineStore, _ := testContext(pub)
	ec.OAuthBaseCredibility = map[string]float64{"google": 1.0}

	// Four distinct authors link the same Google account.
	authors := []string{pub.AuthorKey, "ed25519:sock-1", "ed25519:sock-2", "ed25519:sock-3"}
	for _, key := range authors {
		linked := *pub
		linked.AuthorKey = key
		require.NoError(t, engineStore.RecordPublication(context.Background(), &linked, time.Unix(testNow, 0)))
	}

	// Credibility 1.0/sqrt(4) = 0.5, risk 1 - 0.375 + 0.0375 = 0.6625.
	r := socialFactor(context.Background(), ec, 0.05)
	assert.InDelta(t, 0.6625, r.Score, 1e-9)
}

func TestCredibilityToRiskCurve(t *testing.T) {
	assert.InDelta(t, 1.0, credibilityToRisk(0), 1e-9)
	assert.InDelta(t, 0.40, credibilityToRisk(1.0), 1e-9)
	assert.InDelta(t, 0.1585, credibilityToRisk(1.7), 1e-9)
	assert.InDelta(t, 0.0625, credibilityToRisk(2.5), 1e-9)
}

func TestAuthorReputationReserved(t *testing.T) {
	ec, _, _ := testContext(testPublication())
	r := authorReputationFactor(context.Background(), ec, 0.5)
	assert.Zero(t, r.Weight)
}
