package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.DB)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigDiscoversWorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "camlq.yaml", "format: json\nverbose: true\n")
	chdir(t, dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "settings.yaml", "db: /tmp/a.db\n"},
		{"toml", "settings.toml", "db = \"/tmp/a.db\"\n"},
		{"json", "settings.json", `{"db": "/tmp/a.db"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tc.file, tc.content)

			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, "/tmp/a.db", cfg.DB)
			assert.Equal(t, "text", cfg.Format)
		})
	}
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "camlq.yaml", "format: text\ndb: from-file.db\n")
	t.Setenv("CAMLQ_DB", "from-env.db")
	t.Setenv("CAMLQ_VERBOSE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DB)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "camlq.yaml", "format: [json\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}
