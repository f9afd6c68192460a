package triedb

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config selects and tunes a Store stack: a backend (in-memory or on-disk
// LevelDB), an optional LRU read cache in front of it, and optional
// Prometheus instrumentation.
type Config struct {
	// ArchivePath, if non-empty, opens a durable LevelDB-backed archive
	// store at this path. Otherwise an ephemeral MemoryStore is used.
	ArchivePath string

	// CacheSize is the number of node blobs the LRU read cache holds. Zero
	// disables caching.
	CacheSize int

	// Metrics, if non-nil, wraps the resulting store to record call counts
	// and latency against this registry.
	Metrics prometheus.Registerer
}

// Open builds a Store from cfg, layering caching and metrics around the
// selected backend.
func Open(cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)
	if cfg.ArchivePath != "" {
		store, err = OpenLevelStore(cfg.ArchivePath)
		if err != nil {
			return nil, err
		}
	} else {
		store = NewMemoryStore()
	}

	if cfg.CacheSize > 0 {
		store, err = NewCachingStore(store, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Metrics != nil {
		store = NewMetricsStore(store, cfg.Metrics)
	}
	return store, nil
}
