package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pve-planner/pvescrape/pkg/output"
	"github.com/pve-planner/pvescrape/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configPath := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "load explicit config file",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), `owner: my-fork
branch: develop
output: public/images.json
fetch_timeout: 10s
aliases:
  pimoxhaos: homeassistant
  omv: openmediavault`)
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "my-fork", cfg.Owner)
				assert.Equal(t, source.DefaultRepo, cfg.Repo)
				assert.Equal(t, "develop", cfg.Branch)
				assert.Equal(t, "public/images.json", cfg.Output)
				assert.Equal(t, map[string]string{"pimoxhaos": "homeassistant", "omv": "openmediavault"}, cfg.Aliases)

				opts := cfg.SourceOptions()
				assert.Equal(t, 10*time.Second, opts.FetchTimeout)
				assert.Equal(t, source.DefaultListTimeout, opts.ListTimeout)
			},
		},
		{
			name: "unset fields get defaults",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), `branch: main`)
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "config file not found",
			setup: func(t *testing.T) string {
				return "nonexistent.yml"
			},
			wantErr: true,
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), `invalid yaml content: [`)
			},
			wantErr: true,
		},
		{
			name: "invalid timeout",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), `list_timeout: soon`)
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), `fetch_timeout: -1s`)
			},
			wantErr: true,
		},
		{
			name: "invalid alias target",
			setup: func(t *testing.T) string {
				return writeConfig(t, t.TempDir(), "aliases:\n  alpine: Alpine-Linux")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, output.DefaultPath, cfg.Output)

	opts := cfg.SourceOptions()
	assert.Equal(t, source.Options{
		Owner:          source.DefaultOwner,
		Repo:           source.DefaultRepo,
		Branch:         source.DefaultBranch,
		RawURLTemplate: source.DefaultRawURLTemplate,
		ListTimeout:    source.DefaultListTimeout,
		FetchTimeout:   source.DefaultFetchTimeout,
	}, opts)
}

func TestValidateReportsFirstTimeout(t *testing.T) {
	cfg := Default()
	cfg.ListTimeout = "soon"
	cfg.FetchTimeout = "-1s"

	for range 5 {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid list_timeout")
	}

	cfg.ListTimeout = "1s"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch_timeout must be positive")
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr bool
	}{
		{
			name: "find config in .config/pvescrape.yml",
			setup: func(t *testing.T) {
				dir := t.TempDir()
				writeConfig(t, dir, `branch: main`)
				require.NoError(t, os.Chdir(dir))
			},
		},
		{
			name: "find config in parent directory",
			setup: func(t *testing.T) {
				dir := t.TempDir()
				writeConfig(t, dir, `branch: main`)

				subdir := filepath.Join(dir, "subdir")
				require.NoError(t, os.MkdirAll(subdir, 0755))
				require.NoError(t, os.Chdir(subdir))
			},
		},
		{
			name: "no config found",
			setup: func(t *testing.T) {
				require.NoError(t, os.Chdir(t.TempDir()))
			},
			wantErr: true,
		},
	}

	// Save current working directory
	origWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(origWd)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			path, err := Discover()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(path, filepath.FromSlash(DefaultPath)))
		})
	}
}

func TestLoadOrDiscover(t *testing.T) {
	origWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(origWd)

	t.Run("explicit path wins over discovered file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `branch: discovered`)
		explicitPath := filepath.Join(dir, "explicit.yml")
		require.NoError(t, os.WriteFile(explicitPath, []byte(`branch: explicit`), 0644))
		require.NoError(t, os.Chdir(dir))

		cfg, path, err := LoadOrDiscover(explicitPath)
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.Branch)
		assert.Equal(t, explicitPath, path)
	})

	t.Run("discovered file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `branch: discovered`)
		require.NoError(t, os.Chdir(dir))

		cfg, path, err := LoadOrDiscover("")
		require.NoError(t, err)
		assert.Equal(t, "discovered", cfg.Branch)
		assert.Contains(t, path, "pvescrape.yml")
	})

	t.Run("defaults without a file", func(t *testing.T) {
		require.NoError(t, os.Chdir(t.TempDir()))

		cfg, path, err := LoadOrDiscover("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Empty(t, path)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, _, err := LoadOrDiscover(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})
}
