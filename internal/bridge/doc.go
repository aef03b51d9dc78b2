// Package bridge republishes archived ntfy messages onto a Redis pub/sub
// channel, with a SETNX-based deduplication window keyed by message ID.
package bridge
