package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/logger"
	"github.com/kbukum/factorygirl/util"
)

// FileSystem abstracts the file lookups the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the real disk.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a dotenv file into the process environment.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files for a tool.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching for any
// that were not given.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(name))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists the config file locations in search order.
func configCandidates(name string) []string {
	var paths []string
	for _, dir := range []string{".", "./testdata", "./config"} {
		for _, base := range []string{name, "." + name} {
			paths = append(paths, dir+"/"+base+".yml", dir+"/"+base+".yaml")
		}
	}
	return append(paths, "./config/config.yml", "./config.yml")
}

// envCandidates lists .env.<name> then .env in the working directory, its
// config/ folder and up to two parents.
func envCandidates(name string) []string {
	var paths []string
	for _, file := range []string{".env." + name, ".env"} {
		for _, dir := range []string{"", "config", "..", "../.."} {
			paths = append(paths, filepath.Join(dir, file))
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; missing is an error
	EnvFile    string
	EnvPrefix  string // defaults to the upper-cased name
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the prefix environment overrides must carry.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// LoadConfig decodes the configuration for name into cfg.
//
// Sources, lowest precedence first: the YAML config file, then environment
// variables named <PREFIX>_<KEY> where nested keys are joined with
// underscores (FACTORYGIRL_FACTORY_BASE_PATH sets factory.base_path).
// A .env file is loaded into the environment before binding. A cfg that
// implements Defaulter has ApplyDefaults called after decoding.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = envPrefix(name)
	}

	r := &Resolver{FileSystem: lc.FileSystem}
	files := r.ResolveFiles(name, lc)

	v := viper.New()
	if files.ConfigFile != "" {
		switch {
		case lc.FileSystem.Exists(files.ConfigFile):
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return apperrors.Configuration(fmt.Sprintf("failed to read config file %s", files.ConfigFile)).WithCause(err)
			}
		case lc.ConfigFile != "":
			return apperrors.Configuration(fmt.Sprintf("config file %s not found", files.ConfigFile))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("Failed to load .env file", map[string]interface{}{
				logger.FieldPath:  files.EnvFile,
				logger.FieldError: err.Error(),
			})
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return apperrors.Configuration(fmt.Sprintf("failed to decode config for %s", name)).WithCause(err)
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	return nil
}

// Defaulter is implemented by configs that fill in zero values after loading.
type Defaulter interface {
	ApplyDefaults()
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// bindEnv sets every variable in environ that starts with prefix+"_" on v,
// under each key the remainder could name.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	prefix += "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		for _, k := range envKeyVariants(key[len(prefix):]) {
			v.Set(k, value)
		}
	}
}

// envKeyVariants maps an env key to the config keys it could address.
// Underscores are ambiguous between nesting and word separators, so every
// split point is tried:
//
//	FACTORY_BASE_PATH -> factory_base_path, factory.base_path, factory.base.path
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	variants := []string{lower}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	variants = append(variants, strings.Join(parts, "."))
	return util.Unique(variants)
}
