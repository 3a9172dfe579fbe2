package randomid

import (
	"encoding/binary"
	"hash"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"
)

// BLAKE2bMixer uses keyed BLAKE2b-256 as the round function.
type BLAKE2bMixer struct {
	hashers sync.Pool
}

func NewBLAKE2bMixer(key, tweak []byte) (Mixer, error) {
	k, err := deriveKey(key, tweak, "blake2b", 32)
	if err != nil {
		return nil, err
	}
	// Validate the key once so the pool never has to handle an error.
	if _, err := blake2b.New256(k); err != nil {
		return nil, errors.Wrap(err, "create BLAKE2b hash")
	}
	m := &BLAKE2bMixer{}
	m.hashers.New = func() any {
		h, _ := blake2b.New256(k)
		return h
	}
	return m, nil
}

func (m *BLAKE2bMixer) Mix(round int, half uint64) uint64 {
	h := m.hashers.Get().(hash.Hash)
	defer m.hashers.Put(h)
	h.Reset()

	var in [16]byte
	putRoundInput(&in, round, half)
	_, _ = h.Write(in[:])

	var sum [blake2b.Size256]byte
	return binary.BigEndian.Uint64(h.Sum(sum[:0]))
}
