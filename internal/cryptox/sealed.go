package cryptox

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/dmitrijs2005/sealnote/internal/common"
	"golang.org/x/crypto/argon2"
)

var sealedHeader = []byte("Sealed1_")

const (
	sealedSaltLen  = 16
	sealedNonceLen = 12
)

// deriveSealedKey uses the same argon2id parameters as the vault master key.
func deriveSealedKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func sealGCM(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(sealedSaltLen)
	key := deriveSealedKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(sealedNonceLen)

	out := make([]byte, 0, len(sealedHeader)+sealedSaltLen+sealedNonceLen+len(plaintext)+aead.Overhead())
	out = append(out, sealedHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	// the header is bound as associated data so the format tag cannot be swapped
	return aead.Seal(out, nonce, plaintext, sealedHeader), nil
}

func openGCM(raw, passphrase []byte) ([]byte, error) {
	prefix := len(sealedHeader) + sealedSaltLen + sealedNonceLen
	if len(raw) < prefix {
		return nil, ErrDecryptFailed
	}
	salt := raw[len(sealedHeader) : len(sealedHeader)+sealedSaltLen]
	nonce := raw[len(sealedHeader)+sealedSaltLen : prefix]

	key := deriveSealedKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, raw[prefix:], sealedHeader)
}
