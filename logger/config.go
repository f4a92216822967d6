package logger

import "fmt"

const defaultFilename = "code_simplify.log"

// Config contains logging setup configuration.
type Config struct {
	// Level is the minimum level emitted: trace, debug, info, warn, error, fatal.
	Level string `yaml:"level" mapstructure:"level"`
	// Debug redirects file output under a "<filename>.debug" directory.
	Debug bool `yaml:"debug" mapstructure:"debug"`
	// Filename is the log file name inside LogPath.
	Filename string `yaml:"filename" mapstructure:"filename"`
	// LogPath is the directory holding the log file. Created if missing.
	LogPath string `yaml:"log_path" mapstructure:"log_path"`
	// MaxSizeMB is the rotation threshold in megabytes.
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`
	// Console also writes human-readable output to stderr.
	Console bool `yaml:"console" mapstructure:"console"`
	// NoColor disables ANSI colors on the console writer.
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
	// WarnLoggers forces the named component loggers to WARN regardless of Level.
	WarnLoggers []string `yaml:"warn_loggers" mapstructure:"warn_loggers"`
	// ErrorLoggers forces the named component loggers to ERROR regardless of Level.
	ErrorLoggers []string `yaml:"error_loggers" mapstructure:"error_loggers"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Filename == "" {
		c.Filename = defaultFilename
	}
	if c.LogPath == "" {
		c.LogPath = "."
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	for _, lvl := range validLevels {
		if c.Level == lvl {
			return nil
		}
	}
	return fmt.Errorf("logger: level must be one of %v (got: %s)", validLevels, c.Level)
}
