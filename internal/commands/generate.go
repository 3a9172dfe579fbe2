package commands

import (
	"bufio"
	"io"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fasaxc/randomid"
	"github.com/fasaxc/randomid/internal/config"
)

type idRecord struct {
	Position uint64 `json:"position"`
	ID       uint64 `json:"id"`
}

// idWriter prints IDs in the configured output format.
type idWriter struct {
	w      *bufio.Writer
	enc    sonic.Encoder
	digits int
}

func newIDWriter(w io.Writer, cfg *config.Config) *idWriter {
	bw := bufio.NewWriter(w)
	iw := &idWriter{w: bw, digits: cfg.Digits}
	if cfg.Output == config.OutputJSON {
		iw.enc = sonic.ConfigDefault.NewEncoder(bw)
	}
	return iw
}

func (w *idWriter) write(position, id uint64) error {
	if w.enc != nil {
		return w.enc.Encode(idRecord{Position: position, ID: id})
	}
	if _, err := w.w.WriteString(randomid.Format(id, w.digits)); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *idWriter) writePair(in, out uint64) error {
	if w.enc != nil {
		return w.enc.Encode(idRecord{Position: in, ID: out})
	}
	_, err := w.w.WriteString(strconv.FormatUint(in, 10) + " -> " + randomid.Format(out, w.digits) + "\n")
	return err
}

func (w *idWriter) flush() error {
	return w.w.Flush()
}

func newGenerateCommand(flags *globalFlags) *cobra.Command {
	var (
		count uint64
		skip  uint64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print IDs from the permuted sequence",
		Long: `Print IDs in sequence order. --skip resumes from a counter position
saved by an earlier run; the position after the last printed ID is logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = s.close(err) }()

			seq := s.engine.SequenceAt(skip)
			if count == 0 {
				count = seq.Remaining()
			}

			out := newIDWriter(cmd.OutOrStdout(), s.cfg)
			for range count {
				pos := seq.Position()
				id, ok := seq.Next()
				if !ok {
					break
				}
				if err := out.write(pos, id); err != nil {
					return errors.Wrap(err, "write id")
				}
			}
			if err := seq.Err(); err != nil {
				return err
			}
			if err := out.flush(); err != nil {
				return errors.Wrap(err, "flush output")
			}

			s.log.Info("generated ids",
				zap.Uint64("next_position", seq.Position()),
				zap.Uint64("remaining", seq.Remaining()))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&count, "count", 0, "Number of IDs to print, 0 prints the rest of the domain")
	cmd.Flags().Uint64Var(&skip, "skip", 0, "Counter position to start from")
	return cmd
}
