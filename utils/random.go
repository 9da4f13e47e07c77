package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns an uppercase hex string of 2n characters, used for
// technician and feedback identifiers.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateDigits returns a random numeric string of the given length.
func GenerateDigits(length int) (string, error) {
	const charset = "0123456789"

	code := make([]byte, length)

	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := 0; i < length; i++ {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code), nil
}

// GenerateTicketID returns a ticket identifier of the form <prefix>-NNNN.
// Collisions are not checked; the expected per-session cardinality makes a
// 4-digit suffix acceptable.
func GenerateTicketID(prefix string) (string, error) {
	suffix, err := GenerateDigits(4)
	if err != nil {
		return "", err
	}
	return prefix + "-" + suffix, nil
}
