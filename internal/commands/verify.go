package commands

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCommand(flags *globalFlags) *cobra.Command {
	var maxSize uint64
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured permutation hits every ID exactly once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = s.close(err) }()

			n := s.engine.Size()
			if n > maxSize {
				return errors.Newf("domain size %d exceeds --max-size %d", n, maxSize)
			}

			start := time.Now()
			ids := make([]uint64, n)
			if err := s.engine.Fill(cmd.Context(), ids, 0, s.cfg.Workers); err != nil {
				return err
			}
			if err := checkBijection(ids); err != nil {
				return err
			}

			a, b := s.engine.Split()
			s.log.Info("permutation verified",
				zap.Uint64("domain_size", n),
				zap.Uint64("split_a", a),
				zap.Uint64("split_b", b),
				zap.Duration("elapsed", time.Since(start)))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d distinct ids in [0, %d)\n", n, n)
			return err
		},
	}
	cmd.Flags().Uint64Var(&maxSize, "max-size", 1<<24, "Refuse to verify larger domains")
	return cmd
}

// checkBijection reports the first duplicate or out-of-range value in ids,
// which must be the image of [0, len(ids)).
func checkBijection(ids []uint64) error {
	n := uint64(len(ids))
	seen := make([]uint64, (n+63)/64)
	for i, id := range ids {
		if id >= n {
			return errors.Newf("counter %d maps to %d, outside [0, %d)", i, id, n)
		}
		word, bit := id/64, uint64(1)<<(id%64)
		if seen[word]&bit != 0 {
			return errors.Newf("counter %d maps to duplicate id %d", i, id)
		}
		seen[word] |= bit
	}
	return nil
}
