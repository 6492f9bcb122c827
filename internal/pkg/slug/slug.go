package slug

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// lowercase base36, slugs are case-insensitive in URLs
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const (
	suffixLength = 6
	maxBaseLen   = 80
)

// Slugify lowercases s, strips accents and joins words with single dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if r > unicode.MaxASCII {
				dash = b.Len() > 0
				continue
			}
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			dash = b.Len() > 0
		}
	}
	out := b.String()
	if len(out) > maxBaseLen {
		out = strings.TrimRight(out[:maxBaseLen], "-")
	}
	return out
}

// randomSuffix returns a cryptographically random base36 string.
func randomSuffix(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid suffix length: %d", length)
	}

	// Rejection sampling to avoid modulo bias.
	// 252 is the largest multiple of 36 below 256.
	const maxRandomByte = 252

	out := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			out[written] = alphabet[int(b)%len(alphabet)]
			written++
			if written == length {
				break
			}
		}
	}
	return string(out), nil
}

// New builds a product slug "name-xxxxxx". Names without usable characters
// get the base "product".
func New(name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "product"
	}
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}
