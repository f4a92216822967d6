// Package config loads configuration structs from YAML files, .env files,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for LoadConfig.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// Precedence, lowest to highest: config.yml, .env file, process environment.
// Keys bind by mapstructure tag, nested keys with "." (env: "_", upper-cased).
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findConfigFile(serviceName)
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findEnvFile(serviceName)
	}

	v := viper.New()

	if lc.ConfigFile != "" && exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	if lc.EnvFile != "" && exists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return fmt.Errorf("config: load %s: %w", lc.EnvFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v, reflect.TypeOf(cfg), "")

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for service %s: %w", serviceName, err)
	}
	return nil
}

// bindKeys registers every mapstructure key with viper so AutomaticEnv can
// resolve env-only values that never appear in a config file.
func bindKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface) {
		if t.Kind() == reflect.Interface {
			return
		}
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			bindKeys(v, ft, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

func findConfigFile(serviceName string) string {
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func findEnvFile(serviceName string) string {
	searchPaths := []string{
		fmt.Sprintf(".env.%s", serviceName),
		".env",
	}
	for _, path := range searchPaths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
