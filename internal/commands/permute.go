package commands

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newPermuteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "permute VALUE...",
		Short: "Print the permuted image of each counter value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			values := make([]uint64, 0, len(args))
			for _, arg := range args {
				v, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return errors.Wrapf(err, "parse value %q", arg)
				}
				values = append(values, v)
			}

			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = s.close(err) }()

			out := newIDWriter(cmd.OutOrStdout(), s.cfg)
			for _, v := range values {
				y, err := s.engine.Permute(v)
				if err != nil {
					return err
				}
				if err := out.writePair(v, y); err != nil {
					return errors.Wrap(err, "write id")
				}
			}
			return out.flush()
		},
	}
}
