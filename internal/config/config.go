package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

type SearchConfig struct {
	MaxResults int    `yaml:"max_results"`
	SortBy     string `yaml:"sort_by"`
}

type Config struct {
	Search        SearchConfig `yaml:"search"`
	PrefetchCount int          `yaml:"prefetch_count,omitempty"`
	AI            *AIConfig    `yaml:"ai,omitempty"`
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	if c.AI == nil {
		return false
	}
	return c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("PAPERDECK_AI_KEY")
}

// MaxResults returns the search result count, defaulting to 20.
func (c *Config) MaxResults() int {
	if c.Search.MaxResults <= 0 {
		return 20
	}
	if c.Search.MaxResults > 100 {
		return 100
	}
	return c.Search.MaxResults
}

// SortBy returns the search sort order, defaulting to relevance.
func (c *Config) SortBy() string {
	if c.Search.SortBy == "" {
		return "relevance"
	}
	return c.Search.SortBy
}

// GetPrefetchCount returns how many papers to warm up after a search,
// defaulting to 5.
func (c *Config) GetPrefetchCount() int {
	if c.PrefetchCount <= 0 {
		return 5
	}
	return c.PrefetchCount
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "paperdeck", "config.yaml")
}

func LibraryPath() string {
	return filepath.Join(xdg.DataHome, "paperdeck", "library.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validSorts := map[string]bool{"": true, "relevance": true, "lastUpdatedDate": true, "submittedDate": true}
	if !validSorts[cfg.Search.SortBy] {
		return fmt.Errorf("search.sort_by: unknown sort %q (valid: relevance, lastUpdatedDate, submittedDate)", cfg.Search.SortBy)
	}
	if cfg.Search.MaxResults < 0 || cfg.Search.MaxResults > 100 {
		return fmt.Errorf("search.max_results: must be between 1 and 100, got %d", cfg.Search.MaxResults)
	}
	if cfg.AI != nil {
		validProviders := map[string]bool{"claude": true, "openai": true}
		if !validProviders[cfg.AI.Provider] {
			return fmt.Errorf("ai.provider: unknown provider %q (valid: claude, openai)", cfg.AI.Provider)
		}
	}
	return nil
}
