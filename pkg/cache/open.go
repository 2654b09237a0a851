package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
)

// redisPrefix namespaces every key this tool writes to Redis.
const redisPrefix = "autolayout:"

// appName names the cache directory.
const appName = "autolayout"

// DefaultDir returns the XDG cache directory, $XDG_CACHE_HOME/autolayout or
// ~/.cache/autolayout.
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Open creates the cache selected by cfg.Backend. An empty backend means
// file; an empty file directory means [DefaultDir].
func Open(ctx context.Context, cfg config.Cache) (Cache, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return nonNil(NewFileCache(dir))
	case config.BackendRedis:
		return nonNil(NewRedisCache(ctx, cfg.RedisURL, redisPrefix))
	case config.BackendMongo:
		return nonNil(NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase))
	case config.BackendNone:
		return Disabled(`backend "none"`), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// nonNil keeps a failed constructor from returning a typed nil Cache.
func nonNil[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
