// Package archive persists received ntfy messages in SQLite.
//
// The Store manages the database connection, schema initialization, and
// idempotent inserts keyed by the server-assigned message ID, so a watcher
// that reconnects with a replay window never duplicates rows. The database
// is an append-only local history; schema changes bump the version in
// schema.go and users delete the file to adopt them.
package archive
