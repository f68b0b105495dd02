package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency.
// Timestamps are unix seconds.

// OMDBCacheTable holds OMDb lookups keyed by IMDb ID
const OMDBCacheTable = "omdb_cache"

// OMDBCacheSchema defines the schema for the OMDb metadata cache
const OMDBCacheSchema = `
CREATE TABLE IF NOT EXISTS omdb_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_omdb_expires_at ON omdb_cache(expires_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	OMDBCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	OMDBCacheTable: true,
}
