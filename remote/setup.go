package remote

import (
	"fmt"

	sv "github.com/reoring/schemavalidator"
	"github.com/reoring/schemavalidator/remote/memory"
	"github.com/reoring/schemavalidator/remote/redis"
)

// FromConfig builds the Fetcher described by cfg. It returns nil when remote
// retrieval is disabled.
func FromConfig(cfg sv.RemoteConfig) (*Fetcher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	var cache Cache
	switch cfg.Cache {
	case "":
	case "memory":
		c, err := memory.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		cache = c
	case "redis":
		c, err := redis.Dial(cfg.RedisAddr, cfg.KeyPrefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		cache = c
	default:
		return nil, fmt.Errorf("unknown remote cache %q", cfg.Cache)
	}
	return NewFetcher(cfg.Timeout, cache), nil
}
