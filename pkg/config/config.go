package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/pve-planner/pvescrape/pkg/image"
	"github.com/pve-planner/pvescrape/pkg/output"
	"github.com/pve-planner/pvescrape/pkg/source"
)

// DefaultPath is the config location searched for in the current and parent directories.
const DefaultPath = ".config/pvescrape.yml"

// Config holds the scraper settings. Every field is optional.
type Config struct {
	Owner          string            `yaml:"owner,omitempty"`
	Repo           string            `yaml:"repo,omitempty"`
	Branch         string            `yaml:"branch,omitempty"`
	APIURL         string            `yaml:"api_url,omitempty"`
	RawURLTemplate string            `yaml:"raw_url_template,omitempty"`
	Output         string            `yaml:"output,omitempty"`
	ListTimeout    string            `yaml:"list_timeout,omitempty"`
	FetchTimeout   string            `yaml:"fetch_timeout,omitempty"`
	Aliases        map[string]string `yaml:"aliases,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Owner == "" {
		c.Owner = source.DefaultOwner
	}
	if c.Repo == "" {
		c.Repo = source.DefaultRepo
	}
	if c.Branch == "" {
		c.Branch = source.DefaultBranch
	}
	if c.RawURLTemplate == "" {
		c.RawURLTemplate = source.DefaultRawURLTemplate
	}
	if c.Output == "" {
		c.Output = output.DefaultPath
	}
	if c.ListTimeout == "" {
		c.ListTimeout = source.DefaultListTimeout.String()
	}
	if c.FetchTimeout == "" {
		c.FetchTimeout = source.DefaultFetchTimeout.String()
	}
}

// Validate checks timeouts and alias targets.
func (c *Config) Validate() error {
	timeouts := []struct{ name, value string }{
		{"list_timeout", c.ListTimeout},
		{"fetch_timeout", c.FetchTimeout},
	}
	for _, timeout := range timeouts {
		d, err := time.ParseDuration(timeout.value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", timeout.name)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", timeout.name, timeout.value)
		}
	}
	for from, to := range c.Aliases {
		if !image.ValidID(to) {
			return fmt.Errorf("alias %s: invalid target id %q", from, to)
		}
	}
	return nil
}

// SourceOptions converts the config to GitHub source options. Call Validate first.
func (c *Config) SourceOptions() source.Options {
	listTimeout, _ := time.ParseDuration(c.ListTimeout)
	fetchTimeout, _ := time.ParseDuration(c.FetchTimeout)
	return source.Options{
		Owner:          c.Owner,
		Repo:           c.Repo,
		Branch:         c.Branch,
		APIURL:         c.APIURL,
		RawURLTemplate: c.RawURLTemplate,
		ListTimeout:    listTimeout,
		FetchTimeout:   fetchTimeout,
	}
}

// Load reads and parses a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", path)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file: %s", path)
	}

	return &cfg, nil
}

// Discover searches for a config file in the current directory
// and parent directories
func Discover() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}

	for {
		configPath := filepath.Join(dir, DefaultPath)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Check if we've reached the root
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no pvescrape config found")
}

// LoadOrDiscover loads a config from the given path, or discovers one if path
// is empty. Without a discovered file the defaults are returned with an empty path.
func LoadOrDiscover(configPath string) (*Config, string, error) {
	path := configPath
	if path == "" {
		discovered, err := Discover()
		if err != nil {
			return Default(), "", nil
		}
		path = discovered
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}
