// Package config loads the layout engine settings from TOML.
//
// A configuration file has three optional sections:
//
//	[layout]
//	cell_width = 150
//	cell_height = 140
//	pool_margin = 70
//	lane_label_width = 30
//	max_steps = 0
//
//	[cache]
//	backend = "file"   # file, redis, mongo or none
//	dir = "~/.cache/autolayout"
//	redis_url = "redis://localhost:6379/0"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "autolayout"
//	ttl = "24h"
//	namespace = ""     # keeps deployments sharing a backend apart
//
//	[server]
//	addr = ":8080"
//	read_timeout = "30s"
//	write_timeout = "60s"
//
// Values missing from the file keep their [Default].
package config

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultCellWidth is the width of one grid column.
	DefaultCellWidth = 150

	// DefaultCellHeight is the height of one grid row.
	DefaultCellHeight = 140

	// DefaultPoolMargin is the vertical gap between stacked pools.
	DefaultPoolMargin = 70

	// DefaultLaneLabelWidth is the width of one pool or lane label band.
	DefaultLaneLabelWidth = 30
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// =============================================================================
// Types
// =============================================================================

// Config is the full configuration.
type Config struct {
	Layout Layout `toml:"layout"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Layout holds the geometry constants of the drawing.
type Layout struct {
	CellWidth      float64 `toml:"cell_width"`
	CellHeight     float64 `toml:"cell_height"`
	PoolMargin     float64 `toml:"pool_margin"`
	LaneLabelWidth float64 `toml:"lane_label_width"`

	// MaxSteps caps the placement steps of a whole document. Zero means no
	// limit.
	MaxSteps int `toml:"max_steps"`
}

// Cache selects and configures the layout cache.
type Cache struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisURL      string        `toml:"redis_url"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl"`
	Namespace     string        `toml:"namespace"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// =============================================================================
// Loading
// =============================================================================

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: DefaultLayout(),
		Cache: Cache{
			Backend:       BackendFile,
			RedisURL:      "redis://localhost:6379/0",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "autolayout",
			TTL:           24 * time.Hour,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// DefaultLayout returns the built-in layout geometry.
func DefaultLayout() Layout {
	return Layout{
		CellWidth:      DefaultCellWidth,
		CellHeight:     DefaultCellHeight,
		PoolMargin:     DefaultPoolMargin,
		LaneLabelWidth: DefaultLaneLabelWidth,
	}
}

// Load reads the TOML file at path over the defaults and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, keeping the fields the data omits, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %s", undecoded[0])
	}
	return cfg.Validate()
}

// Resolve loads the configuration for an application. An explicit path must
// exist. Without one, $XDG_CONFIG_HOME/<app>/config.toml is used when
// present, and the defaults otherwise.
func Resolve(explicit, app string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, err := DefaultPath(app)
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// DefaultPath returns the XDG location of the config file for app.
func DefaultPath(app string) (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, app, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", app, "config.toml"), nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate rejects non-positive sizes, a negative step budget and unknown
// cache backends.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone, "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if !validNamespace(c.Cache.Namespace) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache namespace %q may hold only lowercase letters, digits, '-' and '_'", c.Cache.Namespace)
	}
	return nil
}

// Validate rejects sizes that are not positive finite numbers and a negative
// step budget.
func (l Layout) Validate() error {
	sizes := []struct {
		name  string
		value float64
	}{
		{"cell_width", l.CellWidth},
		{"cell_height", l.CellHeight},
		{"pool_margin", l.PoolMargin},
		{"lane_label_width", l.LaneLabelWidth},
	}
	for _, s := range sizes {
		if !(s.value > 0) || math.IsInf(s.value, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a positive finite number, got %v", s.name, s.value)
		}
	}
	if l.MaxSteps < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_steps must not be negative, got %d", l.MaxSteps)
	}
	return nil
}

func validNamespace(ns string) bool {
	for _, r := range ns {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
