package ntfy

import "time"

// Stream event types emitted by the ntfy server.
const (
	EventOpen        = "open"
	EventKeepalive   = "keepalive"
	EventMessage     = "message"
	EventPollRequest = "poll_request"
)

// Message is a single event received on a subscription stream.
type Message struct {
	ID       string   `json:"id"`
	Time     int64    `json:"time"`
	Event    string   `json:"event"`
	Topic    string   `json:"topic"`
	Message  string   `json:"message"`
	Title    string   `json:"title,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
}

// Received returns the server-side publication time.
func (m Message) Received() time.Time {
	return time.Unix(m.Time, 0)
}
