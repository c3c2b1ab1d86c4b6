// Package metrics exports ledger gauges in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentinel/internal/registry"
)

const namespace = "sentinel"

// Exporter owns a private registry so repeated exports in one process never
// collide with the default registerer.
type Exporter struct {
	registry *prometheus.Registry

	snapshotRows    *prometheus.GaugeVec
	provisionalRows *prometheus.GaugeVec
	ledgerReadable  prometheus.Gauge
	events          *prometheus.GaugeVec
	duplicated      prometheus.Gauge
	lastExport      prometheus.Gauge
}

// NewExporter registers the sentinel gauges.
func NewExporter() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}
	e.snapshotRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_rows",
		Help:      "Rows in the current branch snapshot",
	}, []string{"branch"})
	e.provisionalRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "provisional_entries",
		Help:      "Provisional inscriptions since the last import",
	}, []string{"branch"})
	e.ledgerReadable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "provisional_ledger_readable",
		Help:      "1 when the provisional ledger parses, 0 when lookups fall back to snapshots only",
	})
	e.events = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events",
		Help:      "Event log rows by kind",
	}, []string{"kind"})
	e.duplicated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "duplicated_identities",
		Help:      "License ids appearing more than once in the merged view",
	})
	e.lastExport = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_export_timestamp_seconds",
		Help:      "Unix timestamp of the last metrics export",
	})
	e.registry.MustRegister(
		e.snapshotRows, e.provisionalRows, e.ledgerReadable,
		e.events, e.duplicated, e.lastExport,
	)
	return e
}

// Observe replaces every gauge with the values in stats.
func (e *Exporter) Observe(stats registry.Stats, now time.Time) {
	e.snapshotRows.Reset()
	for branch, rows := range stats.SnapshotRows {
		e.snapshotRows.WithLabelValues(string(branch)).Set(float64(rows))
	}
	e.provisionalRows.Reset()
	for branch, rows := range stats.ProvisionalRows {
		e.provisionalRows.WithLabelValues(string(branch)).Set(float64(rows))
	}
	if stats.ProvisionalUnreadable {
		e.ledgerReadable.Set(0)
	} else {
		e.ledgerReadable.Set(1)
	}
	e.events.Reset()
	for kind, count := range stats.Events {
		e.events.WithLabelValues(string(kind)).Set(float64(count))
	}
	e.duplicated.Set(float64(stats.DuplicatedIdentities))
	e.lastExport.Set(float64(now.Unix()))
}

// Gatherer exposes the private registry.
func (e *Exporter) Gatherer() prometheus.Gatherer { return e.registry }

// WriteTextfile atomically writes the current gauges to path.
func (e *Exporter) WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics textfile path not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
