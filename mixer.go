package randomid

import (
	"crypto/hkdf"
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Mixer is the keyed round function of the Feistel network. Mix must be a
// deterministic function of (round, half) for the lifetime of the Mixer and
// must be safe for concurrent use. The engine reduces the result modulo the
// width of the half being replaced.
type Mixer interface {
	Mix(round int, half uint64) uint64
}

// MixerFunc builds a Mixer from the caller's key and the domain tweak. The
// tweak encodes the domain parameters, so two engines over different domains
// never share round outputs.
type MixerFunc func(key, tweak []byte) (Mixer, error)

const (
	MixerSHAKE128 = "shake128"
	MixerAES      = "aes"
	MixerBLAKE2b  = "blake2b"
	MixerSkip32   = "skip32"
)

var mixers = map[string]MixerFunc{
	MixerSHAKE128: NewSHAKE128Mixer,
	MixerAES:      NewAESMixer,
	MixerBLAKE2b:  NewBLAKE2bMixer,
	MixerSkip32:   NewSkip32Mixer,
}

// MixerByName looks up one of the built-in round functions. The empty name
// selects the default, SHAKE128.
func MixerByName(name string) (MixerFunc, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = MixerSHAKE128
	}
	f, ok := mixers[name]
	if !ok {
		return nil, errors.Mark(
			errors.Newf("unknown mixer %q, expected one of %s", name, strings.Join(MixerNames(), ", ")),
			ErrConfig)
	}
	return f, nil
}

// MixerNames returns the names accepted by MixerByName, sorted.
func MixerNames() []string {
	names := make([]string, 0, len(mixers))
	for name := range mixers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// deriveKey stretches an arbitrary-length key to the size a primitive needs.
// The label separates the derived keys of different mixers.
func deriveKey(key, tweak []byte, label string, size int) ([]byte, error) {
	k, err := hkdf.Key(sha256.New, key, tweak, "randomid."+label, size)
	if err != nil {
		return nil, errors.Wrapf(err, "derive %s key", label)
	}
	return k, nil
}

// putRoundInput writes the (round, half) pair fed to a round function.
func putRoundInput(buf *[16]byte, round int, half uint64) {
	binary.BigEndian.PutUint64(buf[0:8], uint64(round))
	binary.BigEndian.PutUint64(buf[8:16], half)
}
