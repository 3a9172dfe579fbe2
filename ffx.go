package randomid

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// AESMixer is a round function in the style of FFX-A2: a CBC-MAC over AES-128
// of a parameter block P, the tweak, and a final block holding the round
// number and half value. Key derivation uses HKDF, so the input key can be any
// length. Numbers are encoded big-endian.
type AESMixer struct {
	aes cipher.Block

	// CBC-MAC state after P and the tweak blocks.
	prefix [aes.BlockSize]byte
}

func NewAESMixer(key, tweak []byte) (Mixer, error) {
	aesKey, err := deriveKey(key, tweak, "aes", 16)
	if err != nil {
		return nil, err
	}
	a, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, errors.Wrap(err, "create AES cipher")
	}

	const (
		vers     = 1
		method   = 2 // Alternating Feistel
		addition = 1 // Blockwise (modular) addition
	)
	var p [aes.BlockSize]byte
	binary.BigEndian.PutUint16(p[0:2], vers)
	p[2] = method
	p[3] = addition
	binary.BigEndian.PutUint64(p[8:16], uint64(len(tweak)))

	m := &AESMixer{aes: a}
	a.Encrypt(m.prefix[:], p[:])

	// Zero-pad the tweak to a whole number of blocks.
	var block [aes.BlockSize]byte
	for len(tweak) > 0 {
		clear(block[:])
		n := copy(block[:], tweak)
		tweak = tweak[n:]
		subtle.XORBytes(block[:], block[:], m.prefix[:])
		a.Encrypt(m.prefix[:], block[:])
	}
	return m, nil
}

func (m *AESMixer) Mix(round int, half uint64) uint64 {
	var in [16]byte
	putRoundInput(&in, round, half)

	var out [aes.BlockSize]byte
	subtle.XORBytes(in[:], in[:], m.prefix[:])
	m.aes.Encrypt(out[:], in[:])
	return binary.BigEndian.Uint64(out[8:16])
}
