package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenLength is the fixed size in bytes of a bearer token.
const TokenLength = 32

// Token is an opaque 32-byte random bearer credential. It renders as
// URL-safe unpadded base64 for transport.
type Token [TokenLength]byte

// ErrTokenDecode is returned by ParseToken for input that is not valid
// URL-safe base64 or does not decode to exactly TokenLength bytes.
type ErrTokenDecode struct {
	cause error
}

func (e *ErrTokenDecode) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("decode token: %v", e.cause)
	}
	return "decode token: invalid length"
}

func (e *ErrTokenDecode) Unwrap() error { return e.cause }

// NewToken draws a fresh token from crypto/rand.
func NewToken() (Token, error) {
	var t Token
	if _, err := rand.Read(t[:]); err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}
	return t, nil
}

// String renders the token as URL-safe base64 without padding.
func (t Token) String() string {
	return base64.RawURLEncoding.EncodeToString(t[:])
}

// ParseToken decodes a token from its URL-safe base64 text form. It is a
// boundary exposed to untrusted network input and never panics on malformed,
// short, or long input.
func ParseToken(s string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, &ErrTokenDecode{cause: err}
	}
	if len(raw) != TokenLength {
		return Token{}, &ErrTokenDecode{}
	}
	var t Token
	copy(t[:], raw)
	return t, nil
}

// MarshalText implements encoding.TextMarshaler so tokens serialize as their
// base64 form in JSON payloads.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Token) UnmarshalText(text []byte) error {
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
