package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"errors"

	"github.com/dmitrijs2005/sealnote/internal/common"
)

var openSSLHeader = []byte("Salted__")

const (
	openSSLSaltLen = 8
	openSSLKeyLen  = 32
)

var errBadPadding = errors.New("bad padding")

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and a single iteration.
func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

func sealOpenSSL(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(openSSLSaltLen)
	key, iv := evpBytesToKey(passphrase, salt, openSSLKeyLen, aes.BlockSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	prefix := len(openSSLHeader) + openSSLSaltLen

	out := make([]byte, prefix+len(padded))
	copy(out, openSSLHeader)
	copy(out[len(openSSLHeader):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[prefix:], padded)
	return out, nil
}

func openOpenSSL(raw, passphrase []byte) ([]byte, error) {
	prefix := len(openSSLHeader) + openSSLSaltLen
	body := len(raw) - prefix
	if body < aes.BlockSize || body%aes.BlockSize != 0 {
		return nil, ErrDecryptFailed
	}

	salt := raw[len(openSSLHeader):prefix]
	key, iv := evpBytesToKey(passphrase, salt, openSSLKeyLen, aes.BlockSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plain := make([]byte, body)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, raw[prefix:])
	return pkcs7Unpad(plain, aes.BlockSize)
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, errBadPadding
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
