// Package encx holds the constant-width binary encodings shared by the
// token packages: base64url without padding and a big-endian base62
// rendering used for opaque refresh-token bodies.
package encx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrDecode reports malformed encoded input.
var ErrDecode = errors.New("encx: malformed input")

// Base62Alphabet is digit-first, then lowercase, then uppercase. The
// order matters: previously issued tokens were encoded with exactly
// this alphabet.
const Base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EncodeBase64URL encodes using the RFC 4648 URL alphabet with the
// trailing padding stripped.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes a base64url string whether or not its padding
// was stripped, re-deriving the omitted padding from the length.
func DecodeBase64URL(s string) ([]byte, error) {
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

// EncodeBase62 interprets b as a big-endian unsigned integer and renders
// it most-significant digit first. A zero value encodes to "0".
//
// Leading zero bytes shorten the output: the integer value is what gets
// encoded, not the byte width. For the fixed-length random inputs this
// is used with, that only varies the printable length, never the
// entropy.
func EncodeBase62(b []byte) string {
	n := new(big.Int).SetBytes(b)
	if n.Sign() == 0 {
		return Base62Alphabet[:1]
	}

	base := big.NewInt(62)
	rem := new(big.Int)

	var digits []byte
	for n.Sign() > 0 {
		n.QuoRem(n, base, rem)
		digits = append(digits, Base62Alphabet[rem.Int64()])
	}

	// Digits come out least-significant first.
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// DecodeBase62 parses a base62 string back into its integer value.
func DecodeBase62(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty base62 string", ErrDecode)
	}

	n := new(big.Int)
	base := big.NewInt(62)
	for _, c := range []byte(s) {
		idx := strings.IndexByte(Base62Alphabet, c)
		if idx < 0 {
			return nil, fmt.Errorf("%w: invalid base62 symbol %q", ErrDecode, c)
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(idx)))
	}
	return n, nil
}
