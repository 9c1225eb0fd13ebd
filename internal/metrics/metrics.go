// Package metrics exposes Prometheus counters for appearance commits and the
// side effects they trigger.
//
// Metrics:
//   - appearance_commits_total: commits by result (ok, failed)
//   - appearance_cache_invalidations_total: commits that required an avatar cache clear
//   - appearance_cache_clear_failures_total: avatar cache clears that failed
//   - appearance_directory_scan_failures_total: choice directories that could not be listed
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "appearance"

// Commit results.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics holds the appearance collectors.
type Metrics struct {
	commits            *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	cacheClearFailures prometheus.Counter
	scanFailures       prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commits_total",
				Help:      "Total number of appearance commits by result",
			},
			[]string{"result"},
		),

		cacheInvalidations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_invalidations_total",
				Help:      "Total number of commits that invalidated the avatar cache",
			},
		),

		cacheClearFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_clear_failures_total",
				Help:      "Total number of failed avatar cache clears",
			},
		),

		scanFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "directory_scan_failures_total",
				Help:      "Total number of choice directories that could not be listed",
			},
		),
	}

	// Pre-create the result series so both show up at zero.
	m.commits.WithLabelValues(ResultOK)
	m.commits.WithLabelValues(ResultFailed)

	if reg != nil {
		reg.MustRegister(m.commits, m.cacheInvalidations, m.cacheClearFailures, m.scanFailures)
	}
	return m
}

// RecordCommit counts a commit by its outcome.
func (m *Metrics) RecordCommit(err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	m.commits.WithLabelValues(result).Inc()
}

// RecordCacheInvalidation counts a commit whose watched options changed.
func (m *Metrics) RecordCacheInvalidation() {
	if m == nil {
		return
	}
	m.cacheInvalidations.Inc()
}

// RecordCacheClearFailure counts a failed avatar cache clear.
func (m *Metrics) RecordCacheClearFailure() {
	if m == nil {
		return
	}
	m.cacheClearFailures.Inc()
}

// RecordDirectoryScanFailure counts a choice directory that could not be
// listed.
func (m *Metrics) RecordDirectoryScanFailure() {
	if m == nil {
		return
	}
	m.scanFailures.Inc()
}
