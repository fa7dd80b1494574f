package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Version is the build version, set with -ldflags at release time.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Explorer  ExplorerConfig  `mapstructure:"explorer" yaml:"explorer"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DataConfig locates the source tables. Relative file names are resolved
// against Dir.
type DataConfig struct {
	Dir            string   `mapstructure:"dir" yaml:"dir"`
	Titles         []string `mapstructure:"titles" yaml:"titles"`
	EpisodeRatings []string `mapstructure:"episode_ratings" yaml:"episode_ratings"`
	EpisodeLinks   []string `mapstructure:"episode_links" yaml:"episode_links"`
	LinksDelimiter string   `mapstructure:"links_delimiter" yaml:"links_delimiter"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SchedulerConfig controls background tasks.
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled" yaml:"enabled"`
	FreshnessCron       string `mapstructure:"freshness_cron" yaml:"freshness_cron"`
	LedgerCleanupCron   string `mapstructure:"ledger_cleanup_cron" yaml:"ledger_cleanup_cron"`
	LedgerRetentionDays int    `mapstructure:"ledger_retention_days" yaml:"ledger_retention_days"`
}

// ExplorerConfig holds the tunables of the chart sections.
type ExplorerConfig struct {
	TopN                int `mapstructure:"top_n" yaml:"top_n"`
	HistogramBins       int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	MinTitlesGenreTrend int `mapstructure:"min_titles_genre_trend" yaml:"min_titles_genre_trend"`
	MinTitlesComparison int `mapstructure:"min_titles_comparison" yaml:"min_titles_comparison"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8501,
		},
		Data: DataConfig{
			Dir:            "./data",
			Titles:         []string{"imdb_dataset.csv"},
			EpisodeRatings: defaultEpisodeRatings(),
			EpisodeLinks:   defaultEpisodeLinks(),
			LinksDelimiter: "",
		},
		Database: DatabaseConfig{
			Path: "./data/imdbexplorer.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			FreshnessCron:       "*/5 * * * *",
			LedgerCleanupCron:   "0 3 * * *",
			LedgerRetentionDays: 30,
		},
		Explorer: ExplorerConfig{
			TopN:                30,
			HistogramBins:       20,
			MinTitlesGenreTrend: 10,
			MinTitlesComparison: 50,
		},
	}
}

func defaultEpisodeRatings() []string {
	parts := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		parts = append(parts, fmt.Sprintf("imdb_episodios_parte%d.csv", i))
	}
	return parts
}

func defaultEpisodeLinks() []string {
	parts := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		parts = append(parts, fmt.Sprintf("title_parte%d.tsv", i))
	}
	return parts
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.imdbexplorer")
	}

	v.SetEnvPrefix("IMDBEXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("data.dir", d.Data.Dir)
	v.SetDefault("data.titles", d.Data.Titles)
	v.SetDefault("data.episode_ratings", d.Data.EpisodeRatings)
	v.SetDefault("data.episode_links", d.Data.EpisodeLinks)
	v.SetDefault("data.links_delimiter", d.Data.LinksDelimiter)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.freshness_cron", d.Scheduler.FreshnessCron)
	v.SetDefault("scheduler.ledger_cleanup_cron", d.Scheduler.LedgerCleanupCron)
	v.SetDefault("scheduler.ledger_retention_days", d.Scheduler.LedgerRetentionDays)

	v.SetDefault("explorer.top_n", d.Explorer.TopN)
	v.SetDefault("explorer.histogram_bins", d.Explorer.HistogramBins)
	v.SetDefault("explorer.min_titles_genre_trend", d.Explorer.MinTitlesGenreTrend)
	v.SetDefault("explorer.min_titles_comparison", d.Explorer.MinTitlesComparison)
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if len(c.Data.Titles) == 0 {
		return fmt.Errorf("data.titles must list at least one file")
	}
	if len(c.Data.EpisodeRatings) == 0 {
		return fmt.Errorf("data.episode_ratings must list at least one file")
	}
	if len(c.Data.EpisodeLinks) == 0 {
		return fmt.Errorf("data.episode_links must list at least one file")
	}
	if len([]rune(c.Data.LinksDelimiter)) > 1 {
		return fmt.Errorf("data.links_delimiter must be empty or a single character, got %q", c.Data.LinksDelimiter)
	}
	if c.Explorer.TopN <= 0 || c.Explorer.HistogramBins <= 0 {
		return fmt.Errorf("explorer.top_n and explorer.histogram_bins must be positive")
	}
	if c.Scheduler.LedgerRetentionDays < 0 {
		return fmt.Errorf("scheduler.ledger_retention_days must not be negative")
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Resolve joins a configured file name with the data directory unless the
// name is already absolute.
func (c *DataConfig) Resolve(names []string) []string {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		if filepath.IsAbs(name) || c.Dir == "" {
			paths = append(paths, name)
			continue
		}
		paths = append(paths, filepath.Join(c.Dir, name))
	}
	return paths
}

// Delimiter returns the episode-link field separator as a rune. Zero means
// the separator is detected from each file's header.
func (c *DataConfig) Delimiter() rune {
	r := []rune(c.LinksDelimiter)
	if len(r) == 0 {
		return 0
	}
	return r[0]
}
