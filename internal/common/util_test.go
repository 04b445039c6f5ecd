package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if buf == nil {
		t.Fatalf("expected non-nil slice")
	}
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

// ---------- RandomCode / IsCode ----------

func TestRandomCode_ShapeMatchesIsCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := RandomCode(CodeLength)
		require.NoError(t, err)
		require.Len(t, c, CodeLength)
		for _, r := range c {
			require.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected rune %q", r)
		}
		assert.True(t, IsCode(c))
	}
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AbCdE12345", true},
		{"abc", false},
		{"AbCdE1234-", false},
		{"AbCdE123456", false},
		{"", false},
		{"ÄbCdE1234", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCode(tt.in), tt.in)
	}
}
