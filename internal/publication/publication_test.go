package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &Publication{
		AuthorKey:         "ed25519:abc",
		SubplebbitAddress: "memes.eth",
		Type:              TypePost,
	}
	require.NoError(t, valid.Validate())

	var nilPub *Publication
	require.ErrorIs(t, nilPub.Validate(), ErrNoPayload)

	noAuthor := &Publication{Type: TypePost}
	require.ErrorIs(t, noAuthor.Validate(), ErrNoAuthorKey)

	blankAuthor := &Publication{AuthorKey: "   ", Type: TypePost}
	require.ErrorIs(t, blankAuthor.Validate(), ErrNoAuthorKey)

	badType := &Publication{AuthorKey: "ed25519:abc", Type: "like"}
	require.ErrorIs(t, badType.Validate(), ErrNoPayload)

	noType := &Publication{AuthorKey: "ed25519:abc"}
	require.ErrorIs(t, noType.Validate(), ErrNoPayload)
}

func TestKarmaCombined(t *testing.T) {
	assert.Equal(t, int64(7), Karma{PostScore: 4, ReplyScore: 3}.Combined())
	assert.Equal(t, int64(-1), Karma{PostScore: 2, ReplyScore: -3}.Combined())
	assert.Zero(t, Karma{}.Combined())
}

func TestIsReply(t *testing.T) {
	assert.False(t, (&Publication{}).IsReply())
	assert.True(t, (&Publication{ParentCid: "Qm123"}).IsReply())
}

func TestNormalizeWallets(t *testing.T) {
	pub := &Publication{
		Wallets: []Wallet{
			{Chain: "eth", Address: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, // lower case
			{Chain: "eth", Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}, // same, checksummed
			{Chain: "eth", Address: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"},
			{Chain: "eth", Address: "not-an-address"},
			{Chain: "sol", Address: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"},
		},
	}

	got := pub.NormalizeWallets()
	assert.Equal(t, []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	}, got, "case variants collapse, malformed and non-EVM entries drop")
}

func TestNormalizeWalletsEmpty(t *testing.T) {
	assert.Nil(t, (&Publication{}).NormalizeWallets())
}
