package randomid

import (
	"github.com/cockroachdb/errors"
	"github.com/dgryski/go-skip32"
)

// Skip32Mixer uses the Skip32 32-bit block cipher as the round function. It is
// much cheaper than the hash based mixers but its internal state is only 32
// bits wide, so it is meant for small domains where speed matters more than
// unpredictability.
type Skip32Mixer struct {
	cipher *skip32.Skip32
}

func NewSkip32Mixer(key, tweak []byte) (Mixer, error) {
	k, err := deriveKey(key, tweak, "skip32", 10)
	if err != nil {
		return nil, err
	}
	c, err := skip32.New(k)
	if err != nil {
		return nil, errors.Wrap(err, "create skip32 cipher")
	}
	return &Skip32Mixer{cipher: c}, nil
}

func (m *Skip32Mixer) Mix(round int, half uint64) uint64 {
	// Halves never exceed 32 bits, the fold only matters for direct callers.
	x := uint32(half) ^ uint32(half>>32)
	r := uint32(round) * 0x9e3779b9
	hi := m.cipher.Obfus(x ^ r)
	lo := m.cipher.Obfus(hi ^ ^r)
	return uint64(hi)<<32 | uint64(lo)
}
