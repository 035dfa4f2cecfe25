package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkggraph/pkg/cache"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/pipeline"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

// envPrefix prefixes every environment variable the CLI reads.
const envPrefix = "PKGGRAPH_"

// Config is the on-disk configuration, loaded from TOML and overridden by
// PKGGRAPH_* environment variables. Command-line flags override both.
//
//	repositories = ["https://dl-cdn.alpinelinux.org/alpine/v3.19/main"]
//	mode = "online"
//	depth = 3
//
//	[cache]
//	backend = "bolt"
type Config struct {
	Repositories []string `toml:"repositories"`
	Mode         string   `toml:"mode"`
	Depth        int      `toml:"depth"`
	Version      string   `toml:"version"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// CacheConfig selects the HTTP and report cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file, bolt, redis or none
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	Prefix    string `toml:"prefix"` // prepended to every key, for shared backends
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects where saved reports go.
type StoreConfig struct {
	Backend  string `toml:"backend"` // file, memory or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Mode:    pipeline.DefaultMode,
		Depth:   pipeline.DefaultMaxDepth,
		Version: "latest",
		Cache:   CacheConfig{Backend: cache.BackendFile},
		Server:  ServerConfig{Addr: defaultServerAddr},
		Store:   StoreConfig{Backend: storage.BackendFile},
	}
}

// loadConfig reads the config file at path on top of the defaults and then
// applies the environment. An empty path means the default location, where a
// missing file is not an error.
func loadConfig(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, applyEnv(&cfg, lookupEnv)
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("load config: %w", err)
	}

	return cfg, applyEnv(&cfg, lookupEnv)
}

// applyEnv overrides cfg with PKGGRAPH_* variables.
func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	str := func(name string, dst *string) {
		if v, ok := lookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookupEnv(envPrefix + "REPOSITORIES"); ok && v != "" {
		cfg.Repositories = splitList(v)
	}
	if v, ok := lookupEnv(envPrefix + "DEPTH"); ok && v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidDepth, err, "%sDEPTH", envPrefix)
		}
		cfg.Depth = depth
	}
	str("MODE", &cfg.Mode)
	str("VERSION", &cfg.Version)
	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("CACHE_DIR", &cfg.Cache.Dir)
	str("REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("CACHE_PREFIX", &cfg.Cache.Prefix)
	str("SERVER_ADDR", &cfg.Server.Addr)
	str("STORE_BACKEND", &cfg.Store.Backend)
	str("STORE_DIR", &cfg.Store.Dir)
	str("MONGO_URI", &cfg.Store.MongoURI)
	str("MONGO_DATABASE", &cfg.Store.Database)
	return nil
}

// splitList splits a comma or whitespace separated list.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
