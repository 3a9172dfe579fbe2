package randomid

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Engine is a keyed permutation over [0, n) for arbitrary n.  Values are split
// into a pair (L, R) with L in [0, a) and R in [0, b), where a*b >= n, and run
// through an alternating Feistel network whose halves are combined with
// modular addition.  Results that fall in [n, a*b) are fed back into the
// network (cycle-walking) until they land inside the domain.
//
// An Engine is safe for concurrent use.
type Engine struct {
	n      uint64
	a, b   uint64
	rounds int

	maxWalks uint64
	mixer    Mixer

	logger  *zap.Logger
	metrics *Metrics
}

// New returns an Engine permuting [0, n) under key with the given number of
// Feistel rounds.
func New(key []byte, n uint64, rounds int, opts ...Option) (*Engine, error) {
	if n == 0 {
		return nil, configErrorf("domain size must be positive")
	}
	if rounds <= 0 {
		return nil, configErrorf("rounds must be positive, got %d", rounds)
	}
	if len(key) == 0 {
		return nil, configErrorf("key must not be empty")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a, b := Split(n)
	hi, ab := bits.Mul64(a, b)
	if hi != 0 {
		return nil, configErrorf("domain size %d is too large to split", n)
	}

	e := &Engine{
		n:        n,
		a:        a,
		b:        b,
		rounds:   rounds,
		maxWalks: ab - n + 1,
		logger:   o.logger,
		metrics:  o.metrics,
	}
	if o.maxWalks > 0 {
		e.maxWalks = o.maxWalks
	}

	mixer, err := o.mixer(append([]byte(nil), key...), domainTweak(n, a, b, rounds, o.tweak))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "build round function"), ErrConfig)
	}
	e.mixer = mixer

	e.logger.Debug("permutation engine ready",
		zap.Uint64("domain_size", n),
		zap.Uint64("split_a", a),
		zap.Uint64("split_b", b),
		zap.Int("rounds", rounds),
		zap.Uint64("max_walks", e.maxWalks))
	if rec := DefaultRounds(n); rounds < rec {
		e.logger.Warn("round count is below the recommended minimum",
			zap.Int("rounds", rounds),
			zap.Int("recommended", rec))
	}
	return e, nil
}

// Split returns the factors a = ceil(sqrt(n)) and b = ceil(n / a) used to
// decompose values of [0, n).
func Split(n uint64) (a, b uint64) {
	if n <= 1 {
		return 1, n
	}
	a = ceilSqrt(n)
	b = (n-1)/a + 1
	return a, b
}

func ceilSqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && (r > math.MaxUint32 || r*r > n) {
		r--
	}
	for r < math.MaxUint32 && (r+1)*(r+1) <= n {
		r++
	}
	if r*r < n {
		r++
	}
	return r
}

// DefaultRounds is the recommended minimum round count for a domain of size n,
// following the FFX-A2 table for the bit length of n.  New does not enforce
// it.
func DefaultRounds(n uint64) int {
	var lengthBits int
	if n > 1 {
		lengthBits = bits.Len64(n - 1)
	}
	switch {
	case lengthBits <= 9:
		return 36
	case lengthBits <= 13:
		return 30
	case lengthBits <= 19:
		return 24
	case lengthBits <= 31:
		return 18
	default:
		return 12
	}
}

// domainTweak binds the round function to the domain parameters and the
// caller's tweak.
func domainTweak(n, a, b uint64, rounds int, tweak []byte) []byte {
	out := make([]byte, 0, 8*5+len(tweak))
	out = append(out, "randomid"...)
	out = binary.BigEndian.AppendUint64(out, n)
	out = binary.BigEndian.AppendUint64(out, a)
	out = binary.BigEndian.AppendUint64(out, b)
	out = binary.BigEndian.AppendUint64(out, uint64(rounds))
	out = append(out, tweak...)
	return out
}

// Size returns the domain size n.
func (e *Engine) Size() uint64 {
	return e.n
}

// Rounds returns the number of Feistel rounds per pass.
func (e *Engine) Rounds() int {
	return e.rounds
}

// Split returns the engine's split factors.
func (e *Engine) Split() (a, b uint64) {
	return e.a, e.b
}

// Permute returns the image of x, which must be in [0, n).
func (e *Engine) Permute(x uint64) (uint64, error) {
	if x >= e.n {
		return 0, errors.Mark(
			errors.Newf("input %d is outside range of permutation [0, %d)", x, e.n),
			ErrOutOfRange)
	}
	if e.n == 1 {
		e.metrics.observePermute(0)
		return 0, nil
	}

	// The Feistel transform is a permutation of [0, a*b), so iterating it
	// from x must come back into [0, n) after visiting at most a*b-n values
	// outside it.
	start := x
	for walks := uint64(1); walks <= e.maxWalks; walks++ {
		x = e.feistel(x)
		if x < e.n {
			e.metrics.observePermute(walks - 1)
			return x, nil
		}
	}

	e.metrics.observeMixingFailure()
	e.logger.Error("cycle-walking exceeded retry bound",
		zap.Uint64("input", start),
		zap.Uint64("domain_size", e.n),
		zap.Uint64("max_walks", e.maxWalks))
	return 0, errors.Mark(
		errors.Newf("permute %d: no in-range value after %d walks", start, e.maxWalks),
		ErrMixing)
}

// feistel applies one pass of the round network to x in [0, a*b).
func (e *Engine) feistel(x uint64) uint64 {
	l, r := x/e.b, x%e.b
	wl, wr := e.a, e.b
	for i := range e.rounds {
		f := e.mixer.Mix(i, r) % wl
		l, r = r, (l+f)%wl
		wl, wr = wr, wl
	}
	return l*wr + r
}

// PermuteRange returns the images of start, start+1, ... start+count-1.
func (e *Engine) PermuteRange(start, count uint64) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	if start >= e.n || count > e.n-start {
		return nil, errors.Mark(
			errors.Newf("range [%d, %d+%d) is outside range of permutation [0, %d)", start, start, count, e.n),
			ErrOutOfRange)
	}
	out := make([]uint64, count)
	for i := range out {
		y, err := e.Permute(start + uint64(i))
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}
