// Package ntfy implements a client for the ntfy pub/sub notification service.
//
// A Client is bound to a single topic at construction time. Publish sends one
// notification per call with optional title, priority, tags, click URL, delay,
// and markdown rendering. Subscribe opens a long-lived stream and exposes
// received messages as a lazy iterator over one of three transports: the
// newline-delimited JSON stream, server-sent events, or a WebSocket. Wrap and
// Notify decorate callables so a notification fires after the callable
// returns, whether it succeeded or failed.
//
// Publish never retries; callers that want retry or reconnect semantics layer
// them on top, the way the watcher does for subscriptions.
package ntfy
