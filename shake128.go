package randomid

import (
	"crypto/sha3"
	"encoding/binary"
	"sync"
)

// SHAKE128Mixer is the default round function.  Each round absorbs the key, the
// domain tweak, the round number and the half value into SHAKE128 and squeezes
// 8 bytes.  Inputs are length-prefixed so that no two (key, tweak) pairs share
// an encoding.
type SHAKE128Mixer struct {
	prefix []byte

	hashers sync.Pool
}

func NewSHAKE128Mixer(key, tweak []byte) (Mixer, error) {
	prefix := make([]byte, 0, 16+len(key)+len(tweak))
	prefix = binary.LittleEndian.AppendUint64(prefix, uint64(len(key)))
	prefix = append(prefix, key...)
	prefix = binary.LittleEndian.AppendUint64(prefix, uint64(len(tweak)))
	prefix = append(prefix, tweak...)
	m := &SHAKE128Mixer{prefix: prefix}
	m.hashers.New = func() any { return sha3.NewSHAKE128() }
	return m, nil
}

func (m *SHAKE128Mixer) Mix(round int, half uint64) uint64 {
	h := m.hashers.Get().(*sha3.SHAKE)
	defer m.hashers.Put(h)
	h.Reset()

	var in [16]byte
	putRoundInput(&in, round, half)
	_, _ = h.Write(m.prefix)
	_, _ = h.Write(in[:])

	var out [8]byte
	_, _ = h.Read(out[:])
	return binary.LittleEndian.Uint64(out[:])
}
