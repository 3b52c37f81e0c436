package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 32},
		{"256-bit token", TokenSize256, 64},
		{"custom size", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			_, err = hex.DecodeString(token)
			require.NoError(t, err, "token should be hex")

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestDigestToken(t *testing.T) {
	// sha256("abc")
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", DigestToken("abc"))
	require.Equal(t, DigestToken("x"), DigestToken("x"))
	require.NotEqual(t, DigestToken("x"), DigestToken("y"))
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("eyJhbGciOiJIUzI1NiJ9.e30.sig")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("eyJhbGciOiJIUzI1NiJ9.e30.sig"))
	require.NotEqual(t, fp, FingerprintToken("eyJhbGciOiJIUzI1NiJ9.e30.other"))
}

func TestDigestMatches(t *testing.T) {
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	stored := DigestToken(token)

	require.True(t, DigestMatches(token, stored))
	require.False(t, DigestMatches(token+"0", stored))
	require.False(t, DigestMatches(token, ""))
	require.False(t, DigestMatches("", stored))
}
