package utils

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Address validation helpers for base58 wallet and mint inputs.

// IsValidAddress checks that a string decodes to a 32-byte base58 public key.
func IsValidAddress(s string) bool {
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == 32
}

// ValidateAddress returns a descriptive error for an invalid address.
func ValidateAddress(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid base58 address %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("invalid address length for %q: %d bytes", s, len(decoded))
	}
	return nil
}

// ShortenAddress renders an address as "abcd...wxyz" for log output.
func ShortenAddress(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
