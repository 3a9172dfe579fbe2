package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fasaxc/randomid"
	"github.com/fasaxc/randomid/internal/config"
	"github.com/fasaxc/randomid/internal/logging"
)

const metricsNamespace = "randomid"

// globalFlags are the persistent flags shared by every engine-backed command.
// Flags that were set explicitly override the config file.
type globalFlags struct {
	configPath string
	cfg        config.Config
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	pf.StringVar(&f.cfg.Key, "key", "", "Hex encoded secret key")
	pf.StringVar(&f.cfg.KeyFile, "key-file", "", "File holding the hex encoded secret key")
	pf.Uint64VarP(&f.cfg.DomainSize, "domain-size", "n", 0, "Number of IDs in the domain")
	pf.IntVar(&f.cfg.Digits, "digits", 0, "Use the domain of all decimal IDs with this many digits")
	pf.IntVarP(&f.cfg.Rounds, "rounds", "r", 0, "Feistel rounds per pass (default 12)")
	pf.Uint64Var(&f.cfg.Tweak, "tweak", 0, "Selects one of many independent permutations for the same key")
	pf.StringVar(&f.cfg.Mixer, "mixer", "", "Round function: shake128, aes, blake2b or skip32")
	pf.StringVarP(&f.cfg.LogLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.cfg.LogFormat, "log-format", "", "Log format (console, json)")
	pf.StringVarP(&f.cfg.Output, "output", "o", "", "Output format (text, json)")
	pf.IntVar(&f.cfg.Workers, "workers", 0, "Parallel workers, 0 uses all CPUs")
	pf.StringVar(&f.cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// resolve merges the config file with the flags that were set.
func (f *globalFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("key") {
		cfg.Key = f.cfg.Key
	}
	if changed("key-file") {
		cfg.KeyFile = f.cfg.KeyFile
		if !changed("key") {
			cfg.Key = ""
		}
	}
	if changed("domain-size") {
		cfg.DomainSize = f.cfg.DomainSize
		if !changed("digits") {
			cfg.Digits = 0
		}
	}
	if changed("digits") {
		cfg.Digits = f.cfg.Digits
		if !changed("domain-size") {
			cfg.DomainSize = 0
		}
	}
	if changed("rounds") {
		cfg.Rounds = f.cfg.Rounds
	}
	if changed("tweak") {
		cfg.Tweak = f.cfg.Tweak
	}
	if changed("mixer") {
		cfg.Mixer = f.cfg.Mixer
	}
	if changed("log-level") {
		cfg.LogLevel = f.cfg.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.cfg.LogFormat
	}
	if changed("output") {
		cfg.Output = f.cfg.Output
	}
	if changed("workers") {
		cfg.Workers = f.cfg.Workers
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.cfg.MetricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the state shared by one engine-backed command invocation.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	engine   *randomid.Engine
	registry *prometheus.Registry
}

func (f *globalFlags) open(cmd *cobra.Command) (*session, error) {
	cfg, err := f.resolve(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	key, err := cfg.KeyBytes()
	if err != nil {
		return nil, err
	}
	n, err := cfg.Domain()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := randomid.NewMetrics(metricsNamespace)
	if err := metrics.Register(registry); err != nil {
		return nil, errors.Wrap(err, "register metrics")
	}
	opts = append(opts, randomid.WithLogger(log), randomid.WithMetrics(metrics))

	engine, err := randomid.New(key, n, cfg.Rounds, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create permutation engine")
	}
	return &session{cfg: cfg, log: log, engine: engine, registry: registry}, nil
}

// close flushes metrics and logs.  It keeps the first error.
func (s *session) close(runErr error) error {
	if runErr != nil {
		s.log.Error("command failed", zap.Error(runErr))
	}
	if s.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(s.cfg.MetricsFile, s.registry); err != nil && runErr == nil {
			runErr = errors.Wrap(err, "write metrics file")
		}
	}
	_ = s.log.Sync()
	return runErr
}
