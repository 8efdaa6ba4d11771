package config

import "time"

// CatalogCacheConfig controls the Redis read-through cache in front of the
// room catalog.  Room capacity and price change rarely, so a short TTL
// keeps admission reads off the catalog without serving stale prices for
// long.
type CatalogCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCatalogCacheConfig reads CATALOG_CACHE_* variables.
func LoadCatalogCacheConfig() CatalogCacheConfig {
	return CatalogCacheConfig{
		Enabled: envBool("CATALOG_CACHE_ENABLED", true),
		TTL:     envDur("CATALOG_CACHE_TTL", 60*time.Second),
		Prefix:  envStr("CATALOG_CACHE_PREFIX", "catalog"),
	}
}
