package cryptox

import (
	"crypto/md5"
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	messages := []string{
		"hello",
		"a",
		"exactly sixteen!",
		`{"message":"hi","files":[]}`,
		"ünïcödé ✓ 日本語",
		strings.Repeat("long text ", 2000),
	}
	passphrases := []string{"correct horse battery staple", "x", "пароль123"}

	for _, scheme := range []Scheme{SchemeOpenSSL, SchemeSealed} {
		c := New(scheme)
		for _, p := range passphrases {
			for _, m := range messages {
				blob, err := c.Encrypt(m, p)
				require.NoError(t, err)

				got, err := c.Decrypt(blob, p)
				require.NoError(t, err, "scheme=%s", scheme)
				assert.Equal(t, m, got)
			}
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	for _, scheme := range []Scheme{SchemeOpenSSL, SchemeSealed} {
		c := New(scheme)
		a, err := c.Encrypt("same", "pass")
		require.NoError(t, err)
		b, err := c.Encrypt("same", "pass")
		require.NoError(t, err)
		assert.NotEqual(t, a, b, "salt must differ between calls")
	}
}

func TestEncrypt_OpenSSLLayout(t *testing.T) {
	blob, err := Encrypt("hello", "pass")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(blob, "U2FsdGVkX1"), "base64 of Salted__ expected, got %s", blob)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	// header + salt + one AES block
	assert.Len(t, raw, 8+8+16)

	s, ok := DetectScheme(blob)
	require.True(t, ok)
	assert.Equal(t, SchemeOpenSSL, s)
}

func TestEncrypt_SealedLayout(t *testing.T) {
	blob, err := New(SchemeSealed).Encrypt("hello", "pass")
	require.NoError(t, err)

	s, ok := DetectScheme(blob)
	require.True(t, ok)
	assert.Equal(t, SchemeSealed, s)

	// a default cipher still opens sealed blobs
	got, err := Decrypt(blob, "pass")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestDecrypt_WrongKey(t *testing.T) {
	samples := []string{"hello", "another message", `{"message":"m","files":[]}`}
	for _, scheme := range []Scheme{SchemeOpenSSL, SchemeSealed} {
		c := New(scheme)
		for _, m := range samples {
			blob, err := c.Encrypt(m, "correct horse battery staple")
			require.NoError(t, err)

			got, err := c.Decrypt(blob, "wrong")
			if err == nil {
				// the legacy format may accidentally decode to valid text, but never the original
				assert.NotEqual(t, m, got)
				assert.True(t, utf8.ValidString(got))
				continue
			}
			assert.ErrorIs(t, err, ErrDecryptFailed)
			assert.Empty(t, got)
		}
	}
}

func TestDecrypt_Corrupted(t *testing.T) {
	blob, err := Encrypt("hello world", "pass")
	require.NoError(t, err)

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"no header", base64.StdEncoding.EncodeToString([]byte("plain text that is long enough"))},
		{"truncated", blob[:len(blob)-8]},
		{"header only", base64.StdEncoding.EncodeToString([]byte("Salted__12345678"))},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.blob, "pass")
			assert.ErrorIs(t, err, ErrDecryptFailed)
		})
	}
}

func TestDecrypt_SealedTamperDetected(t *testing.T) {
	blob, err := New(SchemeSealed).Encrypt("hello", "pass")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = Decrypt(base64.StdEncoding.EncodeToString(raw), "pass")
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEmptyPassphraseRejected(t *testing.T) {
	_, err := Encrypt("hello", "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)

	_, err = Decrypt("U2FsdGVkX1", "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestEmptyPlaintextReadsAsFailure(t *testing.T) {
	blob, err := Encrypt("", "pass")
	require.NoError(t, err)

	_, err = Decrypt(blob, "pass")
	assert.ErrorIs(t, err, ErrDecryptFailed)
	assert.ErrorIs(t, err, ErrEmptyPlaintext)

	blob, err = New(SchemeSealed).Encrypt("", "pass")
	require.NoError(t, err)
	_, err = Decrypt(blob, "pass")
	assert.ErrorIs(t, err, ErrEmptyPlaintext)

	_, err = Decrypt(blob, "other")
	assert.ErrorIs(t, err, ErrDecryptFailed)
	assert.NotErrorIs(t, err, ErrEmptyPlaintext)
}

func TestEvpBytesToKey_MatchesManualMD5Chain(t *testing.T) {
	pass := []byte("pass")
	salt := []byte("12345678")

	d1 := md5.Sum(append(append([]byte{}, pass...), salt...))
	d2 := md5.Sum(append(append(d1[:], pass...), salt...))
	d3 := md5.Sum(append(append(d2[:], pass...), salt...))
	want := append(append(d1[:], d2[:]...), d3[:]...)

	key, iv := evpBytesToKey(pass, salt, 32, 16)
	assert.Equal(t, want[:32], key)
	assert.Equal(t, want[32:48], iv)
}

func TestPKCS7(t *testing.T) {
	for n := 0; n < 40; n++ {
		in := []byte(strings.Repeat("x", n))
		padded := pkcs7Pad(in, 16)
		require.Zero(t, len(padded)%16)
		out, err := pkcs7Unpad(padded, 16)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err := pkcs7Unpad([]byte{1, 2, 3}, 16)
	assert.Error(t, err)

	bad := make([]byte, 16)
	bad[15] = 17
	_, err = pkcs7Unpad(bad, 16)
	assert.Error(t, err)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeOpenSSL, s)

	s, err = ParseScheme("sealed")
	require.NoError(t, err)
	assert.Equal(t, SchemeSealed, s)

	_, err = ParseScheme("rot13")
	assert.Error(t, err)
}
