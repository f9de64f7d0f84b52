// Package config loads the filter configuration with viper and validates it.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/bnema/subreddit-filter/internal/models"
)

// Key names used by the viper instance
const (
	KeyBlockedCommunities = "blocked_communities"
	KeyBlockListFiles     = "blocklist_files"
	KeyBlockListURLs      = "blocklist_urls"
)

// DefaultPath is where init writes a new config file
const DefaultPath = "./configs/subreddit_filter.toml"

// New creates a viper instance pointed at path, or at the default search
// locations when path is empty, with every default set
func New(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("subreddit_filter")
		v.SetConfigType("toml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBlockedCommunities, []string{})
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)
	v.SetDefault("schedule.debounce", 50*time.Millisecond)
	v.SetDefault("schedule.startup_delays", []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		750 * time.Millisecond,
		time.Second,
		1500 * time.Millisecond,
		2500 * time.Millisecond,
		4 * time.Second,
		6 * time.Second,
	})
	v.SetDefault("schedule.scroll_delays", []time.Duration{
		25 * time.Millisecond,
		75 * time.Millisecond,
		150 * time.Millisecond,
	})
	v.SetDefault("output.max_rules_per_file", 50000)
	v.SetDefault("output.strip", false)
	v.SetDefault("log.env", "prod")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.selectors", 256)
	v.SetDefault("cache.tracking", 1024)
}

// Load reads the config file if there is one, then unmarshals and
// validates it. A missing file is not an error: defaults apply.
func Load(v *viper.Viper) (models.Config, error) {
	var cfg models.Config

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags
func Validate(cfg models.Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Default is the file written by init
const Default = `# subreddit-filter configuration

# Communities to hide, with or without the r/ prefix
blocked_communities = []

# Local text lists, one community per line
blocklist_files = []

# Remote text lists in the same format
blocklist_urls = []

# HTTP client settings
[http]
timeout = "30s"
retries = 3

# Sweep scheduling
[schedule]
debounce = "50ms"
startup_delays = ["50ms", "100ms", "250ms", "500ms", "750ms", "1s", "1.5s", "2.5s", "4s", "6s"]
scroll_delays = ["25ms", "75ms", "150ms"]

# Output settings
[output]
max_rules_per_file = 50000
strip = false

[log]
env = "prod"
level = "info"

[cache]
selectors = 256
tracking = 1024
`
