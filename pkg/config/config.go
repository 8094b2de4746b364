// Package config loads plasmap settings from a TOML file.
//
// Every section is optional; missing keys keep their defaults:
//
//	[layout]
//	start_angle = 90
//	ring_spacing = 20
//	cutters_to_show = [1, 2]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//	write_timeout = "30s"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/layout"
)

const appName = "plasmap"

// Cache backends.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the complete file configuration.
type Config struct {
	Layout layout.Options `toml:"layout"`
	Cache  CacheConfig    `toml:"cache"`
	Store  StoreConfig    `toml:"store"`
	Server ServerConfig   `toml:"server"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir,omitempty"` // file backend; defaults to the XDG cache dir
	RedisURL string `toml:"redis_url,omitempty"`
	Prefix   string `toml:"prefix"`
}

// StoreConfig selects the sequence store used by the server.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	DefaultDB    string        `toml:"default_db"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Cache:  CacheConfig{Backend: CacheFile, Prefix: appName + ":"},
		Store:  StoreConfig{Backend: StoreMemory, Database: appName},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 4 << 20,
			DefaultDB:    "default",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/plasmap/config.toml, falling back to
// ~/.config/plasmap/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. When optional is true a
// missing file yields the defaults.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && stderrors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		if stderrors.Is(err, os.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, err
	}
	if err := cfg.decode(string(data)); err != nil {
		return cfg, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Parse reads TOML text over the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	err := cfg.decode(data)
	return cfg, err
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidOptions, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate checks backend names, their required settings and the layout
// options.
func (c *Config) Validate() error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheMemory, CacheNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis {
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "cache backend redis needs a redis:// or rediss:// redis_url")
		}
	}
	if !slices.Contains([]string{StoreMemory, StoreMongo}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidOptions, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo {
		if err := errors.ValidateURL(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "store backend mongo needs a mongodb:// or mongodb+srv:// mongo_uri")
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max_body_bytes must be positive")
	}
	return c.Layout.Validate()
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// CacheDir returns the file cache directory: Cache.Dir when set, else
// $XDG_CACHE_HOME/plasmap or ~/.cache/plasmap.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
