package europepmc

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingArticleURL  = errors.New("europepmc.rest_articles.root_url is required")
	ErrMissingArchiveURL  = errors.New("europepmc.archive_api.root_url is required")
	ErrMissingArchiveFile = errors.New("europepmc.archive_file is required")
	ErrMissingDBFile      = errors.New("sql.db_file is required")
	ErrInvalidDriver      = errors.New("sql.driver must be one of: sqlite3, sqlite")
	ErrInvalidWorkers     = errors.New("harvest.workers must be at least 1")
	ErrInvalidTimeout     = errors.New("harvest.timeout_sec must be at least 1")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Default endpoints of the Europe PMC services.
const (
	DefaultArticleURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/"
	DefaultArchiveURL = "https://europepmc.org/ftp/oa/pmcid.txt.gz"
)

// Config is the harvester configuration.
type Config struct {
	EuropePMC SourceConfig  `yaml:"europepmc"`
	SQL       SQLConfig     `yaml:"sql"`
	Harvest   HarvestConfig `yaml:"harvest"`
	Logging   LoggingConfig `yaml:"logging"`
}

// SourceConfig locates the article and archive endpoints.
type SourceConfig struct {
	RestArticles Endpoint `yaml:"rest_articles"`
	ArchiveAPI   Endpoint `yaml:"archive_api"`

	// ArchiveFile is the local copy of the compressed candidate list.
	ArchiveFile string `yaml:"archive_file"`

	// RerunArchive refetches the candidate list and recreates the ledger.
	RerunArchive bool `yaml:"rerun_archive"`
}

// Endpoint is a service root URL.
type Endpoint struct {
	RootURL string `yaml:"root_url"`
}

// SQLConfig configures the ledger database.
type SQLConfig struct {
	DBFile string `yaml:"db_file"`

	// Driver is the database/sql driver name: "sqlite3" (cgo) or "sqlite" (pure Go).
	Driver string `yaml:"driver"`
}

// HarvestConfig tunes a harvest run.
type HarvestConfig struct {
	Workers    int    `yaml:"workers"`
	TimeoutSec int    `yaml:"timeout_sec"`
	UserAgent  string `yaml:"user_agent"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a configuration pointing at the public Europe PMC services.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from a YAML file. Unset fields take defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.EuropePMC.RestArticles.RootURL == "" {
		c.EuropePMC.RestArticles.RootURL = DefaultArticleURL
	}
	if c.EuropePMC.ArchiveAPI.RootURL == "" {
		c.EuropePMC.ArchiveAPI.RootURL = DefaultArchiveURL
	}
	if c.EuropePMC.ArchiveFile == "" {
		c.EuropePMC.ArchiveFile = "pmcid.txt.gz"
	}
	if c.SQL.DBFile == "" {
		c.SQL.DBFile = "europepmc.db"
	}
	if c.SQL.Driver == "" {
		c.SQL.Driver = "sqlite3"
	}
	if c.Harvest.Workers == 0 {
		c.Harvest.Workers = 1
	}
	if c.Harvest.TimeoutSec == 0 {
		c.Harvest.TimeoutSec = 60
	}
	if c.Harvest.UserAgent == "" {
		c.Harvest.UserAgent = "europepmc-harvester/1.0"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.EuropePMC.RestArticles.RootURL == "" {
		return ErrMissingArticleURL
	}
	if c.EuropePMC.ArchiveAPI.RootURL == "" {
		return ErrMissingArchiveURL
	}
	if c.EuropePMC.ArchiveFile == "" {
		return ErrMissingArchiveFile
	}
	if c.SQL.DBFile == "" {
		return ErrMissingDBFile
	}
	if c.SQL.Driver != "sqlite3" && c.SQL.Driver != "sqlite" {
		return fmt.Errorf("%w: got %q", ErrInvalidDriver, c.SQL.Driver)
	}
	if c.Harvest.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.Harvest.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Harvest.TimeoutSec) * time.Second
}
