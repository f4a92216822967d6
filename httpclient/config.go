package httpclient

import (
	"fmt"
	"time"

	"github.com/Yaocool/code-simplify/logger"
)

// defaultTimeout bounds connect plus full read for one request.
const defaultTimeout = 300 * time.Second

// Config configures the HTTP client.
type Config struct {
	// BaseURL is prepended to request paths that are not absolute URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the total per-request timeout covering connection and
	// full body read. Defaults to 300s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Logger receives failure logs. Defaults to the registered
	// "httpclient" logger.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Get("httpclient")
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}
