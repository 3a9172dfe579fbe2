package randomid

import (
	"encoding/binary"

	"go.uber.org/zap"
)

type options struct {
	tweak    []byte
	mixer    MixerFunc
	logger   *zap.Logger
	metrics  *Metrics
	maxWalks uint64
}

// Option configures an Engine.
type Option func(*options)

// WithTweak selects one of many independent permutations for the same key.
func WithTweak(tweak []byte) Option {
	return func(o *options) {
		o.tweak = append([]byte(nil), tweak...)
	}
}

// TweakUint64 encodes t as an 8-byte big-endian tweak.
func TweakUint64(t uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, t)
}

// WithMixer replaces the default SHAKE128 round function.
func WithMixer(f MixerFunc) Option {
	return func(o *options) {
		if f != nil {
			o.mixer = f
		}
	}
}

// WithLogger sets the logger used for construction details and mixing
// failures. Keys are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records permutation and sequence activity into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMaxWalks caps the number of Feistel passes a single Permute call may
// make before failing with ErrMixing. Zero keeps the default, which is the
// longest walk a bijective round transform can produce.
func WithMaxWalks(n uint64) Option {
	return func(o *options) {
		o.maxWalks = n
	}
}

func defaultOptions() options {
	return options{
		mixer:  NewSHAKE128Mixer,
		logger: zap.NewNop(),
	}
}
