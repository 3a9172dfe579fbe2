// Package config provides configuration loading and validation for the
// randomid command.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fasaxc/randomid"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config describes one ID domain and how to print it.
type Config struct {
	// Key is the hex encoded secret.  KeyFile is read when Key is empty.
	Key     string `yaml:"key" validate:"required"`
	KeyFile string `yaml:"keyFile"`

	// Exactly one of DomainSize and Digits must be set.  Digits selects the
	// domain of all decimal IDs of that width.
	DomainSize uint64 `yaml:"domainSize" validate:"required_without=Digits,excluded_with=Digits"`
	Digits     int    `yaml:"digits" validate:"omitempty,min=1,max=19"`

	Rounds int    `yaml:"rounds" validate:"gt=0"`
	Tweak  uint64 `yaml:"tweak"`
	Mixer  string `yaml:"mixer" validate:"oneof=shake128 aes blake2b skip32"`

	LogLevel  string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"logFormat" validate:"oneof=console json"`
	Output    string `yaml:"output" validate:"oneof=text json"`
	Workers   int    `yaml:"workers" validate:"gte=0"`

	// MetricsFile, when set, receives the Prometheus metrics in text format
	// after each command.
	MetricsFile string `yaml:"metricsFile"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from a YAML file, expanding environment variables.
// An empty path returns the defaults.  The result is not validated, so that
// command line flags can still be applied; call Validate afterwards.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Rounds == 0 {
		c.Rounds = 12
	}
	if c.Mixer == "" {
		c.Mixer = randomid.MixerSHAKE128
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Output == "" {
		c.Output = OutputText
	}
}

// Validate resolves KeyFile and checks every field.
func (c *Config) Validate() error {
	c.Mixer = strings.ToLower(strings.TrimSpace(c.Mixer))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Key == "" && c.KeyFile != "" {
		data, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return errors.Wrap(err, "read key file")
		}
		c.Key = strings.TrimSpace(string(data))
	}
	if err := validate.Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid configuration"), randomid.ErrConfig)
	}
	if _, err := randomid.ParseKey(c.Key); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Domain returns the configured domain size.
func (c *Config) Domain() (uint64, error) {
	if c.Digits > 0 {
		return randomid.DigitsDomain(c.Digits)
	}
	return c.DomainSize, nil
}

// KeyBytes decodes Key.
func (c *Config) KeyBytes() ([]byte, error) {
	return randomid.ParseKey(c.Key)
}

// Options returns the engine options for the configured mixer and tweak.  A
// zero tweak means no tweak.
func (c *Config) Options() ([]randomid.Option, error) {
	mixer, err := randomid.MixerByName(c.Mixer)
	if err != nil {
		return nil, err
	}
	opts := []randomid.Option{randomid.WithMixer(mixer)}
	if c.Tweak != 0 {
		opts = append(opts, randomid.WithTweak(randomid.TweakUint64(c.Tweak)))
	}
	return opts, nil
}
