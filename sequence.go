package randomid

import (
	"iter"

	"github.com/cockroachdb/errors"
)

// Sequence yields Permute(0), Permute(1), ... Permute(n-1) and then stops.
// It is forward-only and not safe for concurrent use; give each goroutine its
// own Sequence or use Engine.Fill.
type Sequence struct {
	e   *Engine
	pos uint64
	err error
}

// NewSequence builds an Engine and returns a Sequence over its domain.
func NewSequence(key []byte, n uint64, rounds int, opts ...Option) (*Sequence, error) {
	e, err := New(key, n, rounds, opts...)
	if err != nil {
		return nil, err
	}
	return e.Sequence(), nil
}

// Sequence returns a new Sequence starting at counter 0.
func (e *Engine) Sequence() *Sequence {
	return &Sequence{e: e}
}

// SequenceAt returns a Sequence resuming at counter pos, as previously
// reported by Position.  Positions at or past the end give an exhausted
// Sequence.
func (e *Engine) SequenceAt(pos uint64) *Sequence {
	return &Sequence{e: e, pos: min(pos, e.n)}
}

// Next returns the next ID.  The boolean is false once the sequence is
// exhausted or has failed, see Err.
func (s *Sequence) Next() (uint64, bool) {
	if s.pos >= s.e.n {
		return 0, false
	}
	y, err := s.e.Permute(s.pos)
	if err != nil {
		s.err = errors.Wrapf(err, "sequence position %d", s.pos)
		s.pos = s.e.n
		return 0, false
	}
	s.pos++
	s.e.metrics.observeEmitted()
	return y, true
}

// Err returns the error that ended the sequence early, or nil when it ended
// by exhaustion or has not ended.
func (s *Sequence) Err() error {
	return s.err
}

// Position returns the number of counter values consumed so far.
func (s *Sequence) Position() uint64 {
	return s.pos
}

// Remaining returns the exact number of IDs left.
func (s *Sequence) Remaining() uint64 {
	return s.e.n - s.pos
}

// Nth skips n IDs and returns the one after them, like calling Next n+1 times.
// Skipping past the end exhausts the sequence.
func (s *Sequence) Nth(n uint64) (uint64, bool) {
	if n >= s.Remaining() {
		s.pos = s.e.n
		return 0, false
	}
	s.pos += n
	return s.Next()
}

// Last exhausts the sequence and returns its final ID.
func (s *Sequence) Last() (uint64, bool) {
	if s.pos >= s.e.n {
		return 0, false
	}
	s.pos = s.e.n - 1
	return s.Next()
}

// Count exhausts the sequence without computing any IDs and returns how many
// it skipped.
func (s *Sequence) Count() uint64 {
	n := s.Remaining()
	s.pos = s.e.n
	return n
}

// All returns an iterator over the remaining IDs.  Check Err after the loop.
func (s *Sequence) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for {
			y, ok := s.Next()
			if !ok || !yield(y) {
				return
			}
		}
	}
}

// Take returns up to n of the remaining IDs.
func (s *Sequence) Take(n int) ([]uint64, error) {
	out := make([]uint64, 0, min(uint64(max(n, 0)), s.Remaining()))
	for len(out) < n {
		y, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, y)
	}
	return out, s.err
}
