package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasaxc/randomid"
)

var testKey = strings.Repeat("ab", randomid.KeySize)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Rounds)
	assert.Equal(t, randomid.MixerSHAKE128, cfg.Mixer)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, OutputText, cfg.Output)

	// No key and no domain.
	assert.Error(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("RANDOMID_TEST_KEY", testKey)
	path := writeFile(t, "randomid.yaml", `
key: ${RANDOMID_TEST_KEY}
domainSize: 1234
rounds: 20
tweak: 7
mixer: AES
output: json
workers: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, testKey, cfg.Key)
	n, err := cfg.Domain()
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), n)
	assert.Equal(t, 20, cfg.Rounds)
	assert.Equal(t, uint64(7), cfg.Tweak)
	assert.Equal(t, randomid.MixerAES, cfg.Mixer)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 4, cfg.Workers)

	key, err := cfg.KeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, randomid.KeySize)

	opts, err := cfg.Options()
	require.NoError(t, err)
	_, err = randomid.New(key, n, cfg.Rounds, opts...)
	require.NoError(t, err)
}

func TestLoadKeyFile(t *testing.T) {
	keyPath := writeFile(t, "key", testKey+"\n")
	path := writeFile(t, "randomid.yaml", "keyFile: "+keyPath+"\ndigits: 4\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, testKey, cfg.Key)

	n, err := cfg.Domain()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), n)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "rounds: [1, 2"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Key = testKey
		cfg.DomainSize = 100
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"missing domain":    func(c *Config) { c.DomainSize = 0 },
		"domain and digits": func(c *Config) { c.Digits = 3 },
		"too many digits":   func(c *Config) { c.DomainSize = 0; c.Digits = 20 },
		"negative rounds":   func(c *Config) { c.Rounds = -1 },
		"unknown mixer":     func(c *Config) { c.Mixer = "md5" },
		"bad log level":     func(c *Config) { c.LogLevel = "loud" },
		"bad output":        func(c *Config) { c.Output = "xml" },
		"negative workers":  func(c *Config) { c.Workers = -2 },
		"missing key":       func(c *Config) { c.Key = "" },
		"non hex key":       func(c *Config) { c.Key = "not hex" },
		"missing key file":  func(c *Config) { c.Key = ""; c.KeyFile = "/nonexistent/key" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateMarksConfigError(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Key = testKey
	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, randomid.ErrConfig))
}
