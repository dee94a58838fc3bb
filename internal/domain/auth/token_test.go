package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)

	text := token.String()
	assert.Len(t, text, 43) // 32 bytes, unpadded base64

	parsed, err := ParseToken(text)
	require.NoError(t, err)
	assert.Equal(t, token, parsed)
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[Token]bool)
	for range 100 {
		token, err := NewToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestParseToken_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not base64", input: "!!!not-base64!!!"},
		{name: "too short", input: base64.RawURLEncoding.EncodeToString(make([]byte, 8))},
		{name: "too long", input: base64.RawURLEncoding.EncodeToString(make([]byte, 48))},
		{name: "padded base64", input: base64.URLEncoding.EncodeToString(make([]byte, 32))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.input)
			require.Error(t, err)

			var decodeErr *ErrTokenDecode
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestToken_JSON(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)

	payload, err := json.Marshal(struct {
		Token Token `json:"access_token"`
	}{Token: token})
	require.NoError(t, err)
	assert.Contains(t, string(payload), token.String())

	var decoded struct {
		Token Token `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, token, decoded.Token)
}
