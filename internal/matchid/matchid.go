// Package matchid generates short, time-sortable identifiers for matches.
package matchid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford base32, as used by TypeID.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generate returns a UUIDv7 encoded as a 26-character base32 string.
func Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters, most significant bits first.
// The 128 bits are left-padded with two zero bits, so the first character is
// always in 0-7.
func Encode(id uuid.UUID) string {
	out := make([]byte, 26)
	// Walk the 130-bit value from its least significant end.
	var acc uint16
	var bits uint
	pos := len(out) - 1
	for i := len(id) - 1; i >= 0; i-- {
		acc |= uint16(id[i]) << bits
		bits += 8
		for bits >= 5 {
			out[pos] = alphabet[acc&0x1f]
			pos--
			acc >>= 5
			bits -= 5
		}
	}
	out[pos] = alphabet[acc&0x1f]
	return string(out)
}

// Validate checks that id could have come from Generate.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("match ID must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
