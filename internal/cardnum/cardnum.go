// Package cardnum validates and generates card numbers. Numbers here are a
// fixed 16-digit shape without a check digit: cards are registered by their
// holders, not issued, so there is no Luhn requirement to enforce.
package cardnum

import (
	"crypto/rand"
	"strings"
)

const numberLen = 16

// IsDigits reports whether s is non-empty and contains ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsValid reports whether number is exactly 16 ASCII digits.
func IsValid(number string) bool {
	return len(number) == numberLen && IsDigits(number)
}

// Generate returns a random 16-digit card number. Random digits are drawn
// with rejection sampling so 0-9 stay uniformly distributed.
func Generate() (string, error) {
	s, err := randomDigits(numberLen)
	if err != nil {
		return "", err
	}
	return s, nil
}

func randomDigits(count int) (string, error) {
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			if buf[i] < threshold {
				sb.WriteByte('0' + (buf[i] % 10))
			}
		}
	}
	return sb.String(), nil
}
