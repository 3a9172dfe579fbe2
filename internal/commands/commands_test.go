package commands

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasaxc/randomid"
)

var testKey = strings.Repeat("5a", randomid.KeySize)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func parseLines(t *testing.T, out string) []uint64 {
	t.Helper()
	var ids []uint64
	for _, line := range strings.Fields(out) {
		v, err := strconv.ParseUint(line, 10, 64)
		require.NoError(t, err)
		ids = append(ids, v)
	}
	return ids
}

func TestKeygen(t *testing.T) {
	out, _, err := run(t, "keygen")
	require.NoError(t, err)
	key, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, key, randomid.KeySize)
}

func TestGenerateAll(t *testing.T) {
	out, _, err := run(t, "generate", "--key", testKey, "-n", "100", "-r", "8")
	require.NoError(t, err)
	ids := parseLines(t, out)
	require.Len(t, ids, 100)

	slices.Sort(ids)
	for i, id := range ids {
		require.Equal(t, uint64(i), id)
	}
}

func TestGenerateMatchesLibrary(t *testing.T) {
	out, _, err := run(t, "generate", "--key", testKey, "-n", "1234", "-r", "8", "--tweak", "3", "--count", "20")
	require.NoError(t, err)

	key, err := randomid.ParseKey(testKey)
	require.NoError(t, err)
	seq, err := randomid.NewSequence(key, 1234, 8, randomid.WithTweak(randomid.TweakUint64(3)))
	require.NoError(t, err)
	want, err := seq.Take(20)
	require.NoError(t, err)
	assert.Equal(t, want, parseLines(t, out))
}

func TestGenerateResume(t *testing.T) {
	args := []string{"generate", "--key", testKey, "-n", "50"}
	all, _, err := run(t, args...)
	require.NoError(t, err)

	head, _, err := run(t, append(args, "--count", "20")...)
	require.NoError(t, err)
	tail, _, err := run(t, append(args, "--skip", "20")...)
	require.NoError(t, err)

	assert.Equal(t, parseLines(t, all), append(parseLines(t, head), parseLines(t, tail)...))
}

func TestGenerateDigits(t *testing.T) {
	out, _, err := run(t, "generate", "--key", testKey, "--digits", "3", "--count", "50")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 50)
	for _, line := range lines {
		assert.Len(t, line, 3)
	}
}

func TestGenerateJSON(t *testing.T) {
	out, _, err := run(t, "generate", "--key", testKey, "-n", "10", "-o", "json", "--count", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var rec idRecord
		require.NoError(t, sonic.UnmarshalString(line, &rec))
		assert.Equal(t, uint64(i), rec.Position)
		assert.Less(t, rec.ID, uint64(10))
	}
}

func TestGenerateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "randomid.yaml")
	metricsPath := filepath.Join(dir, "randomid.prom")
	require.NoError(t, os.WriteFile(path, []byte(
		"key: "+testKey+"\ndomainSize: 1000\nrounds: 6\nmixer: blake2b\nmetricsFile: "+metricsPath+"\n"), 0o600))

	out, _, err := run(t, "generate", "-c", path, "--count", "10")
	require.NoError(t, err)
	assert.Len(t, parseLines(t, out), 10)

	// Flags win over the file.
	out, _, err = run(t, "generate", "-c", path, "-n", "5")
	require.NoError(t, err)
	assert.Len(t, parseLines(t, out), 5)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "randomid_sequence_emitted_total 5")
}

func TestPermuteCommand(t *testing.T) {
	out, _, err := run(t, "permute", "--key", testKey, "-n", "1000", "0", "999")
	require.NoError(t, err)

	key, err := randomid.ParseKey(testKey)
	require.NoError(t, err)
	e, err := randomid.New(key, 1000, 12)
	require.NoError(t, err)
	y0, err := e.Permute(0)
	require.NoError(t, err)
	y999, err := e.Permute(999)
	require.NoError(t, err)
	assert.Equal(t, "0 -> "+strconv.FormatUint(y0, 10)+"\n999 -> "+strconv.FormatUint(y999, 10)+"\n", out)

	_, _, err = run(t, "permute", "--key", testKey, "-n", "1000", "1000")
	assert.True(t, errors.Is(err, randomid.ErrOutOfRange), "%v", err)

	_, _, err = run(t, "permute", "--key", testKey, "-n", "1000", "abc")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	for _, mixer := range randomid.MixerNames() {
		out, _, err := run(t, "verify", "--key", testKey, "-n", "5000", "--mixer", mixer, "--workers", "4")
		require.NoError(t, err, mixer)
		assert.Equal(t, "ok: 5000 distinct ids in [0, 5000)\n", out)
	}

	_, _, err := run(t, "verify", "--key", testKey, "-n", "5000", "--max-size", "100")
	assert.Error(t, err)
}

func TestCheckBijection(t *testing.T) {
	assert.NoError(t, checkBijection([]uint64{2, 0, 1}))
	assert.Error(t, checkBijection([]uint64{2, 0, 2}))
	assert.Error(t, checkBijection([]uint64{3, 0, 1}))
}

func TestConfigErrors(t *testing.T) {
	_, _, err := run(t, "generate", "-n", "10")
	assert.True(t, errors.Is(err, randomid.ErrConfig), "%v", err)

	_, _, err = run(t, "generate", "--key", testKey)
	assert.True(t, errors.Is(err, randomid.ErrConfig), "%v", err)

	_, _, err = run(t, "generate", "--key", testKey, "-n", "10", "--mixer", "rot13")
	assert.Error(t, err)
}

func TestLowRoundsWarning(t *testing.T) {
	_, stderr, err := run(t, "generate", "--key", testKey, "-n", "10", "-r", "1", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "round count is below the recommended minimum")
	assert.NotContains(t, stderr, testKey)
}
