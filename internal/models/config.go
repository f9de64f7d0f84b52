package models

import "time"

// Config represents the main configuration
type Config struct {
	BlockedCommunities []string       `mapstructure:"blocked_communities"`
	BlockListFiles     []string       `mapstructure:"blocklist_files"`
	BlockListURLs      []string       `mapstructure:"blocklist_urls" validate:"dive,url"`
	HTTP               HTTPConfig     `mapstructure:"http"`
	Schedule           ScheduleConfig `mapstructure:"schedule"`
	Output             OutputConfig   `mapstructure:"output"`
	Log                LogConfig      `mapstructure:"log"`
	Cache              CacheConfig    `mapstructure:"cache"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Retries int           `mapstructure:"retries" validate:"gte=0,lte=10"`
}

// ScheduleConfig contains sweep scheduling settings
type ScheduleConfig struct {
	Debounce      time.Duration   `mapstructure:"debounce" validate:"gt=0"`
	StartupDelays []time.Duration `mapstructure:"startup_delays" validate:"dive,gt=0"`
	ScrollDelays  []time.Duration `mapstructure:"scroll_delays" validate:"dive,gt=0"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	MaxRulesPerFile int  `mapstructure:"max_rules_per_file" validate:"gte=0"`
	Strip           bool `mapstructure:"strip"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Env   string `mapstructure:"env" validate:"oneof=dev prod"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// CacheConfig sizes the in-memory lookup caches
type CacheConfig struct {
	Selectors int `mapstructure:"selectors" validate:"gte=0"`
	Tracking  int `mapstructure:"tracking" validate:"gte=0"`
}
