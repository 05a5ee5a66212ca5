// Package config resolves where each tool keeps its session logs and the
// defaults for paging and search.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPageSize   = 50
	DefaultMaxResults = 50
)

// Config holds the resolved settings.
type Config struct {
	// ClaudeDir is the Claude Code projects directory.
	ClaudeDir string `yaml:"claude_dir"`
	// ClaudeStatsFile is Claude Code's usage cache. Empty means next to
	// ClaudeDir.
	ClaudeStatsFile string `yaml:"claude_stats_file"`
	// CodexDir is the Codex CLI sessions directory.
	CodexDir string `yaml:"codex_dir"`
	// OpenCodeDir is the OpenCode storage directory.
	OpenCodeDir string `yaml:"opencode_dir"`

	PageSize   int `yaml:"page_size"`
	MaxResults int `yaml:"max_results"`
	// Workers bounds search parallelism. Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// Default returns the built-in settings for the current user.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &Config{
		ClaudeDir:   filepath.Join(home, ".claude", "projects"),
		CodexDir:    filepath.Join(home, ".codex", "sessions"),
		OpenCodeDir: filepath.Join(home, ".local", "share", "opencode", "storage"),
		PageSize:    DefaultPageSize,
		MaxResults:  DefaultMaxResults,
	}, nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "session-viewer", "config.yaml")
}

// Load resolves the configuration. An explicit path must exist; when path is
// empty the default location is tried and a missing file is ignored.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.mergeEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.ClaudeDir != "" {
		c.ClaudeDir = expandHome(file.ClaudeDir)
	}
	if file.ClaudeStatsFile != "" {
		c.ClaudeStatsFile = expandHome(file.ClaudeStatsFile)
	}
	if file.CodexDir != "" {
		c.CodexDir = expandHome(file.CodexDir)
	}
	if file.OpenCodeDir != "" {
		c.OpenCodeDir = expandHome(file.OpenCodeDir)
	}
	if file.PageSize > 0 {
		c.PageSize = file.PageSize
	}
	if file.MaxResults > 0 {
		c.MaxResults = file.MaxResults
	}
	if file.Workers > 0 {
		c.Workers = file.Workers
	}
	return nil
}

// mergeEnv applies the tools' own home variables. CLAUDE_HOME and
// CODEX_HOME name the tool's home, not its sessions directory.
func (c *Config) mergeEnv() {
	if v := os.Getenv("CLAUDE_HOME"); v != "" {
		c.ClaudeDir = filepath.Join(filepath.Clean(v), "projects")
	}
	if v := os.Getenv("CODEX_HOME"); v != "" {
		c.CodexDir = filepath.Join(filepath.Clean(v), "sessions")
	}
	if v := os.Getenv("OPENCODE_STORAGE"); v != "" {
		c.OpenCodeDir = filepath.Clean(v)
	}
}

func (c *Config) normalize() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
}

func expandHome(p string) string {
	if p == "~" || len(p) > 1 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator) {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
