// Package lnurl implements the pieces of the LNURL protocol this service
// needs: the bech32 text encoding of URLs and a client for fetching pay
// manifests.
package lnurl

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const humanReadablePart = "lnurl"

// Decode converts a bech32-encoded LNURL into the URL it carries. LNURLs
// routinely exceed the 90-character bech32 limit, so the length check is
// skipped.
func Decode(raw string) (string, error) {
	hrp, data, err := bech32.DecodeNoLimit(raw)
	if err != nil {
		return "", err
	}

	if hrp != humanReadablePart {
		return "", fmt.Errorf("incorrect hrp for LNURL. Expected "+
			"'%s', got '%s'", humanReadablePart, hrp)
	}

	data, err = bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Encode converts a URL into its bech32 LNURL form, upper-cased as is
// conventional for QR efficiency.
func Encode(url string) (string, error) {
	converted, err := bech32.ConvertBits([]byte(url), 8, 5, true)
	if err != nil {
		return "", err
	}

	str, err := bech32.Encode(humanReadablePart, converted)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(str), nil
}
