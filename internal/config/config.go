package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rezon-bio/leadintel/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Airtable  AirtableConfig  `yaml:"airtable" mapstructure:"airtable"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Trigger   TriggerConfig   `yaml:"trigger" mapstructure:"trigger"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the record store backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	Path        string           `yaml:"path" mapstructure:"path"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds Anthropic API settings for the research oracle.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxSearches int64  `yaml:"max_searches" mapstructure:"max_searches"`

	// CallIntervalSecs paces oracle calls within a batch.
	CallIntervalSecs int `yaml:"call_interval_secs" mapstructure:"call_interval_secs"`
}

// AirtableConfig holds credentials and table names for the Airtable mirror.
type AirtableConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	BaseID         string `yaml:"base_id" mapstructure:"base_id"`
	CompaniesTable string `yaml:"companies_table" mapstructure:"companies_table"`
	LeadsTable     string `yaml:"leads_table" mapstructure:"leads_table"`
	TriggersTable  string `yaml:"triggers_table" mapstructure:"triggers_table"`
}

// EnrichConfig tunes the enrichment batches.
type EnrichConfig struct {
	ReworkThreshold int `yaml:"rework_threshold" mapstructure:"rework_threshold"`
	ScreenMinFit    int `yaml:"screen_min_fit" mapstructure:"screen_min_fit"`

	// RubricPath points at a business-maintained scoring rubric file. Empty
	// means score with the built-in heuristic.
	RubricPath string `yaml:"rubric_path" mapstructure:"rubric_path"`
}

// ResolveConfig tunes entity resolution.
type ResolveConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// TriggerConfig tunes the trigger lifecycle.
type TriggerConfig struct {
	OutreachVersionCap int `yaml:"outreach_version_cap" mapstructure:"outreach_version_cap"`
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
	v.SetEnvPrefix("LEADINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leadintel.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.max_searches", 5)
	v.SetDefault("anthropic.call_interval_secs", 3)
	v.SetDefault("airtable.companies_table", "Companies")
	v.SetDefault("airtable.leads_table", "Leads")
	v.SetDefault("airtable.triggers_table", "Trigger Events")
	v.SetDefault("enrich.rework_threshold", 85)
	v.SetDefault("enrich.screen_min_fit", 60)
	v.SetDefault("enrich.rubric_path", "")
	v.SetDefault("resolve.fuzzy_threshold", 0.85)
	v.SetDefault("trigger.outreach_version_cap", 10)
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

// Validate checks that the configuration can support the given mode. Modes
// map to command families: "store" for anything that only touches the record
// store, "enrich" for oracle-backed batches, "sync" for the Airtable mirror.
func (c *Config) Validate(mode string) error {
	var problems []string

	storeOK := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "store":
		storeOK()
	case "enrich":
		storeOK()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "sync":
		storeOK()
		if c.Airtable.Key == "" {
			problems = append(problems, "airtable.key is required")
		}
		if c.Airtable.BaseID == "" {
			problems = append(problems, "airtable.base_id is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Resolve.FuzzyThreshold < 0 || c.Resolve.FuzzyThreshold > 1 {
		problems = append(problems, "resolve.fuzzy_threshold must be between 0 and 1")
	}
	if c.Enrich.ReworkThreshold < 0 || c.Enrich.ReworkThreshold > 100 {
		problems = append(problems, "enrich.rework_threshold must be between 0 and 100")
	}
	if c.Enrich.ScreenMinFit < 0 || c.Enrich.ScreenMinFit > 100 {
		problems = append(problems, "enrich.screen_min_fit must be between 0 and 100")
	}
	if c.Trigger.OutreachVersionCap < 1 {
		problems = append(problems, "trigger.outreach_version_cap must be >= 1")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
