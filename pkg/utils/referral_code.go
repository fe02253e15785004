package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const referralCodeBytes = 4

// GenerateReferralCode returns 8 upper-case hex characters from crypto/rand.
func GenerateReferralCode() (string, error) {
	b := make([]byte, referralCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
