// Package metrics defines the Prometheus instruments the watcher exposes.
package metrics
