// Package config loads application configuration from file, environment, and defaults.
package config

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is passed explicitly
// into each pipeline stage; there is no ambient global settings object.
type Config struct {
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	Score  ScoreConfig  `yaml:"score" mapstructure:"score"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures the external job board fetch.
type SearchConfig struct {
	Sites         []string `yaml:"sites" mapstructure:"sites"`
	Term          string   `yaml:"term" mapstructure:"term"`
	Location      string   `yaml:"location" mapstructure:"location"`
	ResultsWanted int      `yaml:"results_wanted" mapstructure:"results_wanted"`
	HoursOld      int      `yaml:"hours_old" mapstructure:"hours_old"`
	RemoteOnly    bool     `yaml:"remote_only" mapstructure:"remote_only"`
	Country       string   `yaml:"country" mapstructure:"country"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int      `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec    float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// FilterConfig configures the title and eligibility filter stages.
type FilterConfig struct {
	TitleInclude      string   `yaml:"title_include" mapstructure:"title_include"`
	TitleExclude      string   `yaml:"title_exclude" mapstructure:"title_exclude"`
	AllowedJobTypes   []string `yaml:"allowed_job_types" mapstructure:"allowed_job_types"`
	ExcludedIntervals []string `yaml:"excluded_intervals" mapstructure:"excluded_intervals"`
}

// ScoreConfig configures the composite scorer.
type ScoreConfig struct {
	KeywordBonuses map[string]int `yaml:"keyword_bonuses" mapstructure:"keyword_bonuses"`
	RemoteBonus    int            `yaml:"remote_bonus" mapstructure:"remote_bonus"`
}

// ExportConfig configures the delimited export file.
type ExportConfig struct {
	OutDir      string   `yaml:"out_dir" mapstructure:"out_dir"`
	Delimiter   string   `yaml:"delimiter" mapstructure:"delimiter"`
	DropColumns []string `yaml:"drop_columns" mapstructure:"drop_columns"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JOBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("search.sites", []string{"indeed", "linkedin", "zip_recruiter", "glassdoor", "google", "bayt"})
	v.SetDefault("search.term", `("backend" OR "software engineer" OR "fullstack" OR "software" OR "engineer")`)
	v.SetDefault("search.location", "USA")
	v.SetDefault("search.results_wanted", 10000)
	v.SetDefault("search.hours_old", 336)
	v.SetDefault("search.remote_only", true)
	v.SetDefault("search.country", "USA")
	v.SetDefault("search.base_url", "http://localhost:8787")
	v.SetDefault("search.timeout_secs", 120)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.rate_per_sec", 2.0)
	v.SetDefault("filter.title_include", "software|engineer|sde|backend|fullstack|developer")
	v.SetDefault("filter.title_exclude", "principal|intern|staff|director|distinguished|executive|manager|entry|junior|chief|support|qa|electrical|geotechnical")
	v.SetDefault("filter.allowed_job_types", []string{"fulltime", "full-time"})
	v.SetDefault("filter.excluded_intervals", []string{"hourly"})
	v.SetDefault("score.keyword_bonuses", map[string]int{
		"backend":       10000,
		"fullstack":     500,
		"frontend":      -200,
		"microservices": 500,
		"distributed":   500,
		"cloud":         700,
		"aws":           10000,
		"benefits":      500,
		"python":        1000,
		"java":          10000,
	})
	v.SetDefault("score.remote_bonus", 50000)
	v.SetDefault("export.out_dir", ".")
	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.drop_columns", []string{
		"description",
		"interval",
		"is_remote",
		"job_type",
		"company_url",
	})
	v.SetDefault("store.path", "jobscout.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	if c.Filter.TitleInclude != "" {
		if _, err := regexp.Compile("(?i)" + c.Filter.TitleInclude); err != nil {
			errs = append(errs, "filter.title_include is not a valid regexp")
		}
	}
	if c.Filter.TitleExclude != "" {
		if _, err := regexp.Compile("(?i)" + c.Filter.TitleExclude); err != nil {
			errs = append(errs, "filter.title_exclude is not a valid regexp")
		}
	}
	if len(c.Search.Sites) == 0 {
		errs = append(errs, "search.sites must name at least one source site")
	}
	if c.Search.ResultsWanted < 0 {
		errs = append(errs, "search.results_wanted must be >= 0")
	}
	if c.Search.HoursOld < 0 {
		errs = append(errs, "search.hours_old must be >= 0")
	}
	if len(c.Export.Delimiter) != 1 {
		errs = append(errs, "export.delimiter must be a single character")
	}
	if c.Store.Path == "" {
		errs = append(errs, "store.path must not be empty")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
