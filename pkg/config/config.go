// Package config loads the command line tool settings from a TOML file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/logging"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml"}

type Postgres struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

// DSN returns a lib/pq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type Config struct {
	// Precision is the bits per axis used when none is given on the
	// command line. It is also the precision of keys in the point store.
	Precision uint8  `toml:"precision"`
	Format    string `toml:"format"`
	LogLevel  string `toml:"log_level"`
	// Glog sends logs through glog. Without LogDir it writes to stderr.
	Glog bool `toml:"glog"`
	// LogDir switches logging to glog files in this directory.
	LogDir   string `toml:"log_dir"`
	Snapshot string `toml:"snapshot"`
	// MetricsOut receives the Prometheus text dump when a command exits.
	// "-" means stderr.
	MetricsOut string   `toml:"metrics_out"`
	Postgres   Postgres `toml:"postgres"`
}

func Default() *Config {
	return &Config{
		Precision: 26,
		Format:    "text",
		LogLevel:  "info",
		Snapshot:  "data/cells.msgpack",
		Postgres: Postgres{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "geodb",
			SSLMode: "disable",
		},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Precision < geocode.MinPrecision || c.Precision > geocode.MaxPrecision {
		return fmt.Errorf("invalid config: %w: %d", geocode.ErrInvalidPrecision, c.Precision)
	}
	if !ValidFormat(c.Format) {
		return fmt.Errorf("invalid config: format %q must be one of %v", c.Format, Formats)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
