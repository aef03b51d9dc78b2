// Package watcher runs the chimed subscription loop: a single-instance
// daemon that archives every message received on the configured topic,
// optionally republishes it to Redis, and serves Prometheus metrics.
package watcher
