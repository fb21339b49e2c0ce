package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
api_key: file-key
addresses:
  Home: 1 Home St, Springfield
  Work: 9 Office Rd, Springfield
`

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, []string{"best_guess", "pessimistic", "optimistic"}, cfg.TrafficModels)
	require.Len(t, cfg.Commutes, 1)
	assert.Equal(t, "Work to Home", cfg.Commutes[0].Name)
	assert.Equal(t, 7, cfg.Grid.Days)
	assert.Equal(t, 15*time.Minute, cfg.Grid.Interval())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}

func TestParseEnvOverridesKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "env-key")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestParseMissingKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	_, err := Parse([]byte("addresses:\n  Home: a\n  Work: b\n"))
	require.Error(t, err)
}

func TestParseUnknownAddress(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	data := minimalYAML + `
commutes:
  - name: Gym run
    origin: Home
    destination: Gym
`
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown destination address "Gym"`)
}

func TestParseRequiresHomeAndWork(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	data := `
api_key: k
addresses:
  Work: 9 Office Rd
  Gym: 3 Lift Ln
commutes:
  - name: Work to Gym
    origin: Work
    destination: Gym
`
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addresses: Home is required")

	_, err = Parse([]byte("api_key: k\naddresses:\n  Home: a\n  Work: \"  \"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addresses: Work is required")
}

func TestParseRejectsBadTrafficModel(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	_, err := Parse([]byte(minimalYAML + "traffic_models: [fastest]\n"))
	require.Error(t, err)
}

func TestParseRejectsInvertedGrid(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	_, err := Parse([]byte(minimalYAML + "grid:\n  startHour: 19\n  endHour: 14\n"))
	require.Error(t, err)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "commutes.yml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9 Office Rd, Springfield", cfg.Addresses["Work"])
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
