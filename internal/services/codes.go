package services

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NormalizeCode strips separators and whitespace from a typed invitation
// code and upper-cases it, so "abcd-efgh-ijkl" and "ABCDEFGHIJKL" are the
// same code.
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			continue
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCode reports whether code has the shape of a normalized invite code:
// exactly InviteCodeLength characters of A-Z or 0-9.
func ValidCode(code string) bool {
	if len(code) != domain.InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// GenerateCode returns a random invite code drawn uniformly from A-Z0-9.
func GenerateCode() (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, domain.InviteCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// FormatCode groups a code in blocks of four for printing on invitations:
// "ABCDEFGHIJKL" becomes "ABCD-EFGH-IJKL".
func FormatCode(code string) string {
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(code[i])
	}
	return b.String()
}
