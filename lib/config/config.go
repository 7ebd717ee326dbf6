// Package config resolves conversion settings from flags, the environment
// (E2F_*) and an optional eagle2fritzing.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"github.com/xoviat/eagle2fritzing/lib/breadboard"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

const (
	Name      = "eagle2fritzing"
	EnvPrefix = "E2F"
)

type Config struct {
	Out       string  `mapstructure:"out"`
	UnitScale float64 `mapstructure:"unit-scale"`
	Origin    string  `mapstructure:"origin"`
	Precision int     `mapstructure:"precision"`
	Workers   int     `mapstructure:"workers"`
	Layers    string  `mapstructure:"layers"`
	Author    string  `mapstructure:"author"`
	Catalog   string  `mapstructure:"catalog"`
	Fzpz      bool    `mapstructure:"fzpz"`
	Report    string  `mapstructure:"report"`
	Subparts  string  `mapstructure:"subparts"`
	LogLevel  string  `mapstructure:"log-level"`
}

// DefaultCatalog is the catalog directory used when none is configured.
func DefaultCatalog() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "catalog")
	}
	return filepath.Join(dir, Name, "catalog")
}

/*
	New returns a viper instance with every setting defaulted. The config
	file is looked up in paths, then the working directory and
	$XDG_CONFIG_HOME/eagle2fritzing.
*/
func New(paths ...string) *viper.Viper {
	v := viper.New()

	v.SetDefault("out", "parts")
	v.SetDefault("unit-scale", geometry.MMToMil)
	v.SetDefault("origin", string(geometry.OriginTopLeft))
	v.SetDefault("precision", 4)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("layers", "")
	v.SetDefault("author", "")
	v.SetDefault("catalog", "")
	v.SetDefault("fzpz", false)
	v.SetDefault("report", "")
	v.SetDefault("subparts", breadboard.DefaultOptions().Subparts)
	v.SetDefault("log-level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, Name))
	}

	return v
}

// Load reads the config file, if there is one, and decodes every setting.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c, nil
}

func (c *Config) Geometry() (geometry.Options, error) {
	origin, err := geometry.ParseOrigin(c.Origin)
	if err != nil {
		return geometry.Options{}, err
	}
	if c.UnitScale <= 0 {
		return geometry.Options{}, fmt.Errorf("unit scale must be positive, got %v", c.UnitScale)
	}
	if c.Precision < 0 {
		return geometry.Options{}, fmt.Errorf("precision must not be negative, got %d", c.Precision)
	}

	return geometry.Options{UnitScale: c.UnitScale, Origin: origin, Precision: c.Precision}, nil
}

// Mapper loads the configured layer table, if any, in place of the default
// one.
func (c *Config) Mapper() (mapper.Options, error) {
	opts := mapper.DefaultOptions()
	opts.Author = c.Author
	if c.Layers != "" {
		table, err := fritzing.LoadLayers(c.Layers)
		if err != nil {
			return opts, err
		}
		opts.Layers = table
	}
	return opts, nil
}

func (c *Config) Breadboard() breadboard.Options {
	return breadboard.Options{
		Subparts:  c.Subparts,
		UnitScale: c.UnitScale,
		Precision: c.Precision,
	}
}
