package wallet

import (
	"errors"

	"github.com/mr-tron/base58"
)

const (
	PublicKeyLength = 32
	SignatureLength = 64
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid transaction signature")
)

// ValidateAddress checks that address is a base58 encoded ed25519 public key.
func ValidateAddress(address string) error {
	if err := decodeLength(address, PublicKeyLength); err != nil {
		return ErrInvalidAddress
	}
	return nil
}

// ValidateSignature checks that sig is a base58 encoded transaction signature.
func ValidateSignature(sig string) error {
	if err := decodeLength(sig, SignatureLength); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func decodeLength(s string, n int) error {
	if s == "" {
		return errors.New("empty input")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return err
	}
	if len(b) != n {
		return errors.New("unexpected length")
	}
	return nil
}
