package common

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
//
// Since Go 1.24 crypto/rand.Read never returns an error, so there is
// nothing to propagate to the caller.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// RandomCode returns a random string of length n drawn uniformly from CodeAlphabet.
func RandomCode(n int) (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = CodeAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// IsCode reports whether s has the shape of a message code.
func IsCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// WipeByteArray overwrites b with zeros. Use it for passphrases read from the
// terminal once they are no longer needed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
