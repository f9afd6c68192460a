package triedb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okonomi-labs/go-mpt/common"
)

// MetricsStore wraps another Store, recording call counts, error counts, and
// latency for every operation under the okonomi_trie_store namespace.
type MetricsStore struct {
	next Store

	calls   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetricsStore registers its collectors against reg (pass
// prometheus.DefaultRegisterer for the global registry) and returns a Store
// wrapping next.
func NewMetricsStore(next Store, reg prometheus.Registerer) *MetricsStore {
	s := &MetricsStore{
		next: next,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "okonomi_trie",
			Subsystem: "store",
			Name:      "calls_total",
			Help:      "Number of Store method calls, by method.",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "okonomi_trie",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Number of Store method calls that returned an error, by method.",
		}, []string{"method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "okonomi_trie",
			Subsystem: "store",
			Name:      "call_duration_seconds",
			Help:      "Store method call latency, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(s.calls, s.errors, s.latency)
	return s
}

func (s *MetricsStore) observe(method string, start time.Time, err error) {
	s.calls.WithLabelValues(method).Inc()
	s.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		s.errors.WithLabelValues(method).Inc()
	}
}

func (s *MetricsStore) Get(digest common.Hash) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := s.next.Get(digest)
	s.observe("get", start, err)
	return data, ok, err
}

func (s *MetricsStore) Contains(digest common.Hash) (bool, error) {
	start := time.Now()
	ok, err := s.next.Contains(digest)
	s.observe("contains", start, err)
	return ok, err
}

func (s *MetricsStore) Insert(digest common.Hash, data []byte) error {
	start := time.Now()
	err := s.next.Insert(digest, data)
	s.observe("insert", start, err)
	return err
}

func (s *MetricsStore) Remove(digest common.Hash) error {
	start := time.Now()
	err := s.next.Remove(digest)
	s.observe("remove", start, err)
	return err
}

func (s *MetricsStore) InsertBatch(items map[common.Hash][]byte) error {
	start := time.Now()
	err := s.next.InsertBatch(items)
	s.observe("insert_batch", start, err)
	return err
}

func (s *MetricsStore) RemoveBatch(digests []common.Hash) error {
	start := time.Now()
	err := s.next.RemoveBatch(digests)
	s.observe("remove_batch", start, err)
	return err
}

func (s *MetricsStore) Flush() error {
	start := time.Now()
	err := s.next.Flush()
	s.observe("flush", start, err)
	return err
}
