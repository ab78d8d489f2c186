// Package config loads themekit settings from defaults, a TOML file, the
// environment, .env files and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
)

const (
	// AppName names the config file, env prefix and default directories.
	AppName = "themekit"

	// EnvConfigPath overrides the config directory.
	EnvConfigPath = "THEMEKIT_CONFIG_PATH"
)

// EnvKeyReplacer maps config keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Config is the resolved configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Ramp   RampConfig   `mapstructure:"ramp"`
	Image  ImageConfig  `mapstructure:"image"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// StoreConfig selects and locates the brand store.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"`
	DatabaseURL string `mapstructure:"database_url"`
	DataDir     string `mapstructure:"data_dir"`
}

// RampConfig holds ramp generation defaults.
type RampConfig struct {
	Curve string `mapstructure:"curve"`
}

// ImageConfig configures image loading.
type ImageConfig struct {
	CacheDir string `mapstructure:"cache_dir"`
}

// ExportConfig configures brand exports.
type ExportConfig struct {
	TemplateDir string `mapstructure:"template_dir"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// StoreOptions converts the store section into brand.Open options.
func (c *Config) StoreOptions(fsys afero.Fs) brand.Options {
	return brand.Options{
		Backend:     brand.Backend(c.Store.Backend),
		DatabaseURL: c.Store.DatabaseURL,
		DataDir:     c.Store.DataDir,
		Fs:          fsys,
	}
}

// Values returns the effective value of every key in Fields, as text.
func (c *Config) Values() map[string]string {
	return map[string]string{
		"store.backend":       c.Store.Backend,
		"store.database_url":  c.Store.DatabaseURL,
		"store.data_dir":      c.Store.DataDir,
		"ramp.curve":          c.Ramp.Curve,
		"image.cache_dir":     c.Image.CacheDir,
		"export.template_dir": c.Export.TemplateDir,
		"log.level":           c.Log.Level,
		"log.json":            strconv.FormatBool(c.Log.JSON),
	}
}

// Curve returns the configured default curve.
func (c *Config) Curve() colour.Curve {
	return colour.Curve(c.Ramp.Curve)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	backends := []brand.Backend{brand.BackendAuto, brand.BackendPostgres, brand.BackendFile, brand.BackendMemory}
	if !lo.Contains(backends, brand.Backend(c.Store.Backend)) {
		return fmt.Errorf("invalid store.backend %q (valid: auto, postgres, file, memory)", c.Store.Backend)
	}
	if brand.Backend(c.Store.Backend) == brand.BackendPostgres && c.Store.DatabaseURL == "" {
		return errors.New("store.backend is postgres but store.database_url is empty")
	}
	if _, err := colour.ParseCurve(c.Ramp.Curve); err != nil {
		return fmt.Errorf("invalid ramp.curve: %w", err)
	}
	return nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Fs is the filesystem config and .env files are read from.
	Fs afero.Fs
	// File is an explicit config file. Missing explicit files are an error.
	File string
	// ConfigDir is searched for themekit.toml when File is empty.
	ConfigDir string
	// EnvFiles are .env files loaded into the process environment.
	// Missing files are skipped and existing variables are never overridden.
	EnvFiles []string
	// Flags are bound by name through FlagKeys.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"store":        "store.backend",
	"database-url": "store.database_url",
	"data-dir":     "store.data_dir",
	"log-level":    "log.level",
	"log-json":     "log.json",
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if err := loadEnvFiles(opts.Fs, opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(opts.Fs)
	v.SetConfigType("toml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(AppName)
		dir := opts.ConfigDir
		if dir == "" {
			dir = ConfigDir()
		}
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, field := range Fields() {
		v.MustBindEnv(field.Key)
	}

	v.SetTypeByDefaultValue(true)
	for _, field := range Fields() {
		v.SetDefault(field.Key, field.Value)
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Ramp.Curve == "" {
		cfg.Ramp.Curve = string(colour.CurveLinear)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles mirrors godotenv.Load on top of an afero filesystem.
func loadEnvFiles(fsys afero.Fs, files []string) error {
	for _, name := range files {
		f, err := fsys.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}

		values, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for key, value := range values {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}
	return nil
}

// ConfigDir is where themekit.toml is looked up by default.
func ConfigDir() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return custom
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, AppName)
}

// DataDir is the default file store directory. XDG_DATA_HOME is honoured,
// then ~/.local/share on Unix-like systems.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil && runtime.GOOS != "windows" {
		return filepath.Join(home, ".local", "share", AppName)
	}
	return filepath.Join(ConfigDir(), "data")
}

// TemplateDir is the default directory of custom export templates.
func TemplateDir() string {
	return filepath.Join(ConfigDir(), "templates")
}

// CacheDir is the default cache for downloaded logos.
func CacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName, "images")
	}
	return filepath.Join(os.TempDir(), AppName, "images")
}
