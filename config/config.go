// Package config loads settings for the sie command from an optional config
// file, a .env file and SIE_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/store"
)

const envPrefix = "SIE"

type Config struct {
	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	MaxUploadSize int64  `mapstructure:"max_upload_size"`
	Owner         string `mapstructure:"owner"`

	ProgramName    string `mapstructure:"program_name"`
	ProgramVersion string `mapstructure:"program_version"`
	CompanyName    string `mapstructure:"company_name"`
	OrgNo          string `mapstructure:"org_no"`
	AccountPlan    string `mapstructure:"account_plan"`
	YearRange      int    `mapstructure:"year_range"`
	Series         string `mapstructure:"series"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MaxStandardLength int `mapstructure:"max_standard_length"`
	MinStandard       int `mapstructure:"min_standard"`
	ReservedFrom      int `mapstructure:"reserved_from"`
	ReservedTo        int `mapstructure:"reserved_to"`
	MaxStandard       int `mapstructure:"max_standard"`
}

var keys = []string{
	"db_driver", "db_dsn", "max_upload_size", "owner",
	"program_name", "program_version", "company_name", "org_no", "account_plan", "year_range", "series",
	"log_level", "log_format",
	"max_standard_length", "min_standard", "reserved_from", "reserved_to", "max_standard",
}

func Default() Config {
	th := sie.DefaultThresholds()
	return Config{
		DBDriver:          store.DriverSQLite,
		DBDSN:             "sieio.db",
		MaxUploadSize:     sie.DefaultMaxUploadSize,
		Owner:             "default",
		ProgramName:       "sieio",
		ProgramVersion:    "1.0",
		AccountPlan:       "BAS2014",
		YearRange:         7,
		Series:            "A",
		LogLevel:          "info",
		LogFormat:         "text",
		MaxStandardLength: th.MaxStandardLength,
		MinStandard:       th.Min,
		ReservedFrom:      th.ReservedFrom,
		ReservedTo:        th.ReservedTo,
		MaxStandard:       th.Max,
	}
}

// Load reads the configuration. file may be empty; a missing .env file is
// not an error.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}
	if c.ReservedFrom > c.ReservedTo {
		return fmt.Errorf("reserved_from %d is above reserved_to %d", c.ReservedFrom, c.ReservedTo)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func (c *Config) Thresholds() sie.Thresholds {
	return sie.Thresholds{
		MaxStandardLength: c.MaxStandardLength,
		Min:               c.MinStandard,
		ReservedFrom:      c.ReservedFrom,
		ReservedTo:        c.ReservedTo,
		Max:               c.MaxStandard,
	}
}

// Logger returns a logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
