package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testDatabaseConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type testConfig struct {
	Name     string             `mapstructure:"name"`
	Database testDatabaseConfig `mapstructure:"database"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", "name: from-yaml\ndatabase:\n  host: localhost\n  port: 5432\n")

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(cfgFile)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-yaml" {
		t.Errorf("Name = %q, want from-yaml", cfg.Name)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("Database = %+v, want localhost:5432", cfg.Database)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", "name: from-yaml\n")
	t.Setenv("NAME", "from-env")

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(cfgFile)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", cfg.Name)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "DATABASE_HOST=db.internal\n")
	t.Cleanup(func() { _ = os.Unsetenv("DATABASE_HOST") })

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithEnvFile(envFile)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
}

func TestLoadConfigMissingFilesIsFine(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("no-such-service", &cfg, WithConfigFile(""), WithEnvFile("")); err != nil {
		t.Fatalf("LoadConfig with no files should succeed, got: %v", err)
	}
}
