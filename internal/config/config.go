// Package config loads and saves gasolina settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. GASOLINA_DATA_FILE.
const EnvPrefix = "GASOLINA"

// Config holds all gasolina configuration.
type Config struct {
	Data       DataConfig       `toml:"data" mapstructure:"data"`
	Server     ServerConfig     `toml:"server" mapstructure:"server"`
	Appearance AppearanceConfig `toml:"appearance" mapstructure:"appearance"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`
}

// DataConfig selects the price source and how it is read.
type DataConfig struct {
	File     string `toml:"file" mapstructure:"file"`
	Sheet    string `toml:"sheet,omitempty" mapstructure:"sheet"`
	Mode     string `toml:"mode" mapstructure:"mode"`
	UseCache bool   `toml:"use_cache" mapstructure:"use_cache"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr          string  `toml:"addr" mapstructure:"addr"`
	RatePerSecond float64 `toml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int     `toml:"burst" mapstructure:"burst"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" mapstructure:"theme"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			File:     "gasolina_mexico_completo.xlsx",
			Mode:     string(model.ModeEstimate),
			UseCache: true,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			RatePerSecond: 20,
			Burst:         40,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gasolina")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gasolina")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads defaults, then the TOML file at path when present, then
// GASOLINA_* environment overrides.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("data.file", d.Data.File)
	v.SetDefault("data.sheet", d.Data.Sheet)
	v.SetDefault("data.mode", d.Data.Mode)
	v.SetDefault("data.use_cache", d.Data.UseCache)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_per_second", d.Server.RatePerSecond)
	v.SetDefault("server.burst", d.Server.Burst)
	v.SetDefault("appearance.theme", d.Appearance.Theme)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config as TOML to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Data.File == "" {
		return errors.New("data.file is required")
	}
	if _, err := model.ParseMode(c.Data.Mode); err != nil {
		return fmt.Errorf("data.mode: %w", err)
	}
	if c.Server.RatePerSecond <= 0 {
		return fmt.Errorf("server.rate_per_second must be > 0, got %v", c.Server.RatePerSecond)
	}
	if c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be >= 1, got %d", c.Server.Burst)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Mode returns the parsed data mode, defaulting to estimate.
func (c Config) Mode() model.Mode {
	m, err := model.ParseMode(c.Data.Mode)
	if err != nil {
		return model.ModeEstimate
	}
	return m
}
