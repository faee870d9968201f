package repository

import (
	"encoding/json"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/formhive/formhive"
)

// StructureCache keeps parsed form structures in memcached. Keys embed the
// form's update timestamp, so entries never need explicit invalidation and
// can simply expire.
type StructureCache struct {
	mc *memcache.Client
}

func NewStructureCache(mc *memcache.Client) *StructureCache {
	return &StructureCache{mc: mc}
}

const structureCacheTTL = 600 // seconds

func (c *StructureCache) Get(key string) (*formhive.FormStructure, bool) {
	item, err := c.mc.Get(key)
	if err != nil {
		return nil, false
	}
	var structure formhive.FormStructure
	if err := json.Unmarshal(item.Value, &structure); err != nil {
		slog.Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
			slog.String("module", "repository"),
		)
		return nil, false
	}
	return &structure, true
}

func (c *StructureCache) Set(key string, structure *formhive.FormStructure) {
	value, err := json.Marshal(structure)
	if err != nil {
		slog.Warn("failed to encode structure for cache",
			slog.String("key", key),
			slog.String("error", err.Error()),
			slog.String("module", "repository"),
		)
		return
	}
	err = c.mc.Set(&memcache.Item{Key: key, Value: value, Expiration: structureCacheTTL})
	if err != nil {
		slog.Warn("failed to write structure cache",
			slog.String("key", key),
			slog.String("error", err.Error()),
			slog.String("module", "repository"),
		)
	}
}
