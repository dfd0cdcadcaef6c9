package cache

// Logger interface for cache logging
type Logger interface {
	Log(level, message string)
}

// Key identifies one derived view product. Keys compare structurally, so two
// requests for the same operation under the same axes, predicates and table
// collide on the same entry.
type Key struct {
	Op          string // derived product name, e.g. "grid" or "value_range"
	XColumn     string
	YColumn     string
	ValueColumn string
	Filters     string // canonical predicate serialization, empty when unfiltered
	DataSig     string // structural fingerprint of the loaded table
}

// Stats contains cache counters for diagnostics
type Stats struct {
	Entries       int     `json:"entries"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Invalidations int64   `json:"invalidations"`
	HitRate       float64 `json:"hitRate"`
	Enabled       bool    `json:"enabled"`
}
