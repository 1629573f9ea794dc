package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library    LibraryConfig    `toml:"library"`
	Downloader DownloaderConfig `toml:"downloader"`
	Index      IndexConfig      `toml:"index"`
	Database   DatabaseConfig   `toml:"database"`
}

// LibraryConfig describes the staging and library directories and how files
// move between them.
type LibraryConfig struct {
	StagingDir     string   `toml:"staging_dir"`
	TargetDir      string   `toml:"target_dir"`
	ListPath       string   `toml:"list_path"`
	Extensions     []string `toml:"extensions"`
	OnCollision    string   `toml:"on_collision"` // "rename" or "skip"
	KeepDuplicates bool     `toml:"keep_duplicates"`
}

// DownloaderConfig contains settings for the external download tool.
type DownloaderConfig struct {
	Binary         string  `toml:"binary"`
	AudioFormat    string  `toml:"audio_format"`
	AudioQuality   string  `toml:"audio_quality"`
	OutputTemplate string  `toml:"output_template"`
	RateLimit      float64 `toml:"rate_limit"` // invocations per second
	EmbedMetadata  bool    `toml:"embed_metadata"`
	EmbedThumbnail bool    `toml:"embed_thumbnail"`
}

// IndexConfig contains settings for the media-index refresh command.
type IndexConfig struct {
	Binary string   `toml:"binary"`
	Args   []string `toml:"args"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ExpandHome resolves a leading "~/" in configured paths against the
// current user's home directory. Paths without the prefix pass through
// unchanged, as does "~/" when the home directory cannot be determined.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
