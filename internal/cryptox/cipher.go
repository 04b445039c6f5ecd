package cryptox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrEmptyPassphrase is returned before any cryptographic work is done.
	ErrEmptyPassphrase = errors.New("empty passphrase")

	// ErrDecryptFailed means the passphrase is wrong or the blob is corrupted.
	// The two cases cannot be told apart.
	ErrDecryptFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrEmptyPlaintext is an ErrDecryptFailed for a blob that opened to
	// nothing. Callers that expect empty content may accept it.
	ErrEmptyPlaintext = fmt.Errorf("%w: empty result", ErrDecryptFailed)
)

// Scheme selects the blob format produced by Encrypt.
type Scheme int

const (
	SchemeOpenSSL Scheme = iota
	SchemeSealed
)

func (s Scheme) String() string {
	switch s {
	case SchemeOpenSSL:
		return "openssl"
	case SchemeSealed:
		return "sealed"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// ParseScheme maps a config string to a Scheme. The empty string selects the default.
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "", "openssl":
		return SchemeOpenSSL, nil
	case "sealed":
		return SchemeSealed, nil
	default:
		return 0, fmt.Errorf("unknown cipher scheme %q", s)
	}
}

// Cipher encrypts and decrypts text under a passphrase.
// The zero value uses SchemeOpenSSL and is safe for concurrent use.
type Cipher struct {
	scheme Scheme
}

// New returns a Cipher producing blobs in the given scheme.
func New(scheme Scheme) *Cipher {
	return &Cipher{scheme: scheme}
}

// Scheme reports the format Encrypt produces.
func (c *Cipher) Scheme() Scheme {
	return c.scheme
}

// Encrypt seals plaintext under passphrase and returns the base64 blob.
// Every call uses a fresh salt, so equal inputs give different blobs.
func (c *Cipher) Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	var (
		raw []byte
		err error
	)
	switch c.scheme {
	case SchemeOpenSSL:
		raw, err = sealOpenSSL([]byte(plaintext), []byte(passphrase))
	case SchemeSealed:
		raw, err = sealGCM([]byte(plaintext), []byte(passphrase))
	default:
		return "", fmt.Errorf("encrypt: unsupported %s", c.scheme)
	}
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens a blob produced by Encrypt. A wrong passphrase or a damaged
// blob yields ErrDecryptFailed, never a partial result. Results that are
// empty or not valid UTF-8 are reported the same way.
func (c *Cipher) Decrypt(blob, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrDecryptFailed
	}

	var plain []byte
	switch {
	case bytes.HasPrefix(raw, openSSLHeader):
		plain, err = openOpenSSL(raw, []byte(passphrase))
	case bytes.HasPrefix(raw, sealedHeader):
		plain, err = openGCM(raw, []byte(passphrase))
	default:
		return "", ErrDecryptFailed
	}
	if err != nil {
		return "", ErrDecryptFailed
	}

	if len(plain) == 0 {
		return "", ErrEmptyPlaintext
	}
	if !utf8.Valid(plain) {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}

// DetectScheme reports which format blob is in, or false for text that is
// not a blob at all.
func DetectScheme(blob string) (Scheme, bool) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return 0, false
	}
	switch {
	case bytes.HasPrefix(raw, openSSLHeader):
		return SchemeOpenSSL, true
	case bytes.HasPrefix(raw, sealedHeader):
		return SchemeSealed, true
	}
	return 0, false
}

var defaultCipher = &Cipher{}

// Encrypt seals plaintext with the default OpenSSL-compatible scheme.
func Encrypt(plaintext, passphrase string) (string, error) {
	return defaultCipher.Encrypt(plaintext, passphrase)
}

// Decrypt opens a blob in either scheme.
func Decrypt(blob, passphrase string) (string, error) {
	return defaultCipher.Decrypt(blob, passphrase)
}
