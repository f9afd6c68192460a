package triedb

import "github.com/prometheus/client_golang/prometheus"

// newTestRegistry returns a fresh, isolated registry so repeated test runs
// never collide with prometheus's default global registry.
func newTestRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
