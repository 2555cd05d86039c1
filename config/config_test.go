package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/factorygirl/errors"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to test", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "test" {
			t.Errorf("expected 'test', got %q", cfg.Environment)
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name 'svc', got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level kept with debug", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected warn level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		c := ServiceConfig{Name: "svc", Environment: env}
		c.Logging.ApplyDefaults()
		return c
	}
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid test", valid("test"), false, ""},
		{"valid ci", valid("ci"), false, ""},
		{"missing name", ServiceConfig{Environment: "test"}, true, "config.name is required"},
		{"invalid environment", valid("production"), true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Factory       struct {
		BasePath string   `mapstructure:"base_path"`
		Schemas  []string `mapstructure:"schemas"`
	} `mapstructure:"factory"`
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "factorygirl.yml")

	yamlContent := `
name: factorygirl
environment: ci
factory:
  base_path: fixtures/factories
  schemas: [main, audit]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("factorygirl", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "factorygirl" {
		t.Errorf("expected name 'factorygirl', got %q", cfg.Name)
	}
	if cfg.Environment != "ci" {
		t.Errorf("expected environment 'ci', got %q", cfg.Environment)
	}
	if cfg.Factory.BasePath != "fixtures/factories" {
		t.Errorf("expected base path, got %q", cfg.Factory.BasePath)
	}
	if len(cfg.Factory.Schemas) != 2 || cfg.Factory.Schemas[1] != "audit" {
		t.Errorf("unexpected schemas %v", cfg.Factory.Schemas)
	}
	// Defaulter hook ran.
	if cfg.Logging.Level == "" {
		t.Error("expected logging defaults to be applied")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "factorygirl.yml")
	if err := os.WriteFile(configPath, []byte("name: factorygirl\nfactory:\n  base_path: a\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("FACTORYGIRL_FACTORY_BASE_PATH", "from-env")
	t.Setenv("FACTORY_SCHEMAS", "ignored")

	var cfg testConfig
	if err := LoadConfig("factorygirl", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Factory.BasePath != "from-env" {
		t.Errorf("expected env override, got %q", cfg.Factory.BasePath)
	}
	if len(cfg.Factory.Schemas) != 0 {
		t.Errorf("expected unprefixed variable to be ignored, got %v", cfg.Factory.Schemas)
	}
}

func TestLoadConfigCustomEnvPrefix(t *testing.T) {
	t.Setenv("FG_NAME", "seeded")

	var cfg testConfig
	err := LoadConfig("factorygirl", &cfg,
		WithFileSystem(&mockFS{files: map[string]bool{}}),
		WithEnvPrefix("FG"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "seeded" {
		t.Errorf("expected name from FG_NAME, got %q", cfg.Name)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("factorygirl", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadConfigNoFileFound(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("factorygirl", &cfg, WithFileSystem(&mockFS{files: map[string]bool{}}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed without a config file, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./factorygirl.yml": true,
		".env":              true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("factorygirl", LoaderConfig{})
	if files.ConfigFile != "./factorygirl.yml" {
		t.Errorf("expected config file at ./factorygirl.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./testdata/factorygirl.yml": true,
		"./config.yml":               true,
		"config/.env":                true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("factorygirl", LoaderConfig{})
	if files.ConfigFile != "./testdata/factorygirl.yml" {
		t.Errorf("expected testdata config to win, got %q", files.ConfigFile)
	}
	if files.EnvFile != "config/.env" {
		t.Errorf("expected config/.env, got %q", files.EnvFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("FACTORY_BASE_PATH")
	want := []string{"factory_base_path", "factory.base_path", "factory.base.path"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("envKeyVariants() = %v, want %v", got, want)
	}
	if got := envKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("envKeyVariants(NAME) = %v, want [name]", got)
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := envPrefix("factory-girl.dev"); got != "FACTORY_GIRL_DEV" {
		t.Errorf("envPrefix() = %q", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
