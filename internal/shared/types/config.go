package types

// Config represents the service configuration that can be loaded from a file
// and overridden by environment variables.
type Config struct {
	ActionGroup      string   `json:"action_group" yaml:"action_group" toml:"action_group"`
	DefaultRegion    string   `json:"default_region" yaml:"default_region" toml:"default_region"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CompliantRegions []string `json:"compliant_regions" yaml:"compliant_regions" toml:"compliant_regions"`
	RetryMaxAttempts int      `json:"retry_max_attempts" yaml:"retry_max_attempts" toml:"retry_max_attempts"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		ActionGroup:   "aws-ai-concierge-tools",
		DefaultRegion: "us-east-1",
		LogLevel:      "info",
		CompliantRegions: []string{
			"us-east-1", "us-east-2", "us-west-1", "us-west-2",
			"eu-west-1", "eu-west-2", "eu-central-1",
		},
		RetryMaxAttempts: 3,
	}
}
