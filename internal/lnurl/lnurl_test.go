package lnurl

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	urls := []string{
		"https://example.org/.well-known/lnurlp/bob",
		"https://pay.example.com/lnurlp/alice?tag=payRequest",
		// Long enough to exceed the classic 90-char bech32 limit.
		"https://a-rather-long-hostname.example.net/some/deeply/nested/callback/path/for/lnurl-pay/endpoints",
	}

	for _, url := range urls {
		encoded, err := Encode(url)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "LNURL1"), "encoded form starts with the hrp: %s", encoded)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, url, decoded)
	}
}

func TestDecodeRejectsWrongHRP(t *testing.T) {
	converted, err := bech32.ConvertBits([]byte("https://example.org/x"), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode("lnxyz", converted)
	require.NoError(t, err)

	_, err = Decode(encoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect hrp")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-bech32-at-all", "lnurl1qqqqqqqx"} {
		_, err := Decode(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
