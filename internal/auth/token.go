package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AuthTokenLength is the random part of verification and reset tokens.
const AuthTokenLength = 50

// GenerateToken returns an opaque bearer token: length random alphanumeric
// characters followed by a nanosecond timestamp suffix for uniqueness.
// Tokens carry no signature and must only travel over a confidential
// channel.
func GenerateToken(length int) string {
	buf := make([]byte, length)

	max := big.NewInt(int64(len(tokenAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is
			// broken, at which point serving logins is unsafe.
			panic(err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}

	return string(buf) + strconv.FormatInt(time.Now().UnixNano(), 10)
}
