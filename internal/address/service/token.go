package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// The removal token is a bearer credential, so it comes from crypto/rand.
const (
	tokenLength   = 20
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func newAuthenticationToken() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	token := make([]byte, tokenLength)
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate authentication token: %w", err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
