package randomid

import "github.com/cockroachdb/errors"

var (
	// ErrConfig is returned by the constructors when the domain size, round
	// count or key cannot be used to build a permutation.
	ErrConfig = errors.New("invalid permutation config")

	// ErrOutOfRange is returned when Permute is called with a value outside
	// [0, N).
	ErrOutOfRange = errors.New("value outside permutation domain")

	// ErrMixing is returned when cycle-walking does not land inside the domain
	// within the configured number of walks. It means the round function is not
	// deterministic.
	ErrMixing = errors.New("cycle-walking exceeded retry bound")
)

func configErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfig)
}
