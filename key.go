package randomid

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// KeySize is the recommended key length in bytes.
const KeySize = 32

// GenerateKey reads a KeySize key from r, or from crypto/rand when r is nil.
func GenerateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "read key bytes")
	}
	return key, nil
}

// ParseKey decodes a hex encoded key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode hex key"), ErrConfig)
	}
	if len(key) == 0 {
		return nil, configErrorf("key must not be empty")
	}
	return key, nil
}

// DigitsDomain returns 10^digits, the size of the domain of all decimal IDs
// with at most that many digits.
func DigitsDomain(digits int) (uint64, error) {
	if digits <= 0 || digits > 19 {
		return 0, configErrorf("digits must be in [1, 19], got %d", digits)
	}
	return uint64(math.Pow10(digits)), nil
}

// Format renders id in decimal, zero-padded to digits characters.
func Format(id uint64, digits int) string {
	s := strconv.FormatUint(id, 10)
	if pad := digits - len(s); pad > 0 {
		return strings.Repeat("0", pad) + s
	}
	return s
}
