package ntfy

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Transport selects how a subscription connects to the server.
type Transport string

const (
	// TransportJSON reads the newline-delimited JSON stream. Default.
	TransportJSON Transport = "json"
	// TransportSSE reads the server-sent-events stream.
	TransportSSE Transport = "sse"
	// TransportWS reads messages over a WebSocket.
	TransportWS Transport = "ws"
)

const streamBufferLimit = 1 << 20

type subscribeOptions struct {
	transport Transport
	since     string
	scheduled bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeOptions)

// WithTransport selects the stream transport.
func WithTransport(t Transport) SubscribeOption {
	return func(o *subscribeOptions) { o.transport = t }
}

// WithSince replays messages since a duration ("30m"), Unix timestamp, or
// message ID before streaming live messages.
func WithSince(since string) SubscribeOption {
	return func(o *subscribeOptions) { o.since = strings.TrimSpace(since) }
}

// WithScheduled includes delayed messages that have not been delivered yet.
func WithScheduled() SubscribeOption {
	return func(o *subscribeOptions) { o.scheduled = true }
}

// Subscribe opens a long-lived stream on the client's topic and returns a
// lazy iterator over received messages. The connection is opened when
// iteration begins and released when the stream closes, the context is
// cancelled, or the consumer stops iterating. Keepalive and open events are
// filtered out; only message events are yielded, in the order received. A
// terminal failure is yielded as a non-nil error before the sequence ends.
func (c *Client) Subscribe(ctx context.Context, opts ...SubscribeOption) iter.Seq2[Message, error] {
	options := subscribeOptions{transport: TransportJSON}
	for _, opt := range opts {
		opt(&options)
	}

	return func(yield func(Message, error) bool) {
		switch options.transport {
		case TransportWS:
			c.streamWebSocket(ctx, options, yield)
		case TransportSSE:
			c.streamHTTP(ctx, "sse", options, yield)
		default:
			c.streamHTTP(ctx, "json", options, yield)
		}
	}
}

func (o subscribeOptions) query() string {
	values := url.Values{}
	if o.since != "" {
		values.Set("since", o.since)
	}
	if o.scheduled {
		values.Set("sched", "1")
	}
	return values.Encode()
}

func (c *Client) streamHTTP(ctx context.Context, path string, options subscribeOptions, yield func(Message, error) bool) {
	endpoint := c.topicURL() + "/" + path
	if query := options.query(); query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		yield(Message{}, fmt.Errorf("build subscribe request: %w", err))
		return
	}
	req.Header.Set("User-Agent", userAgent)
	c.authorize(req)

	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			yield(Message{}, fmt.Errorf("%w: subscribe: %v", ErrTransport, err))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		yield(Message{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), streamBufferLimit)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if path == "sse" {
			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				// event:/id:/retry: framing lines carry no payload.
				continue
			}
			line = strings.TrimSpace(data)
			if line == "" {
				continue
			}
		}

		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			yield(Message{}, fmt.Errorf("%w: decode event: %v", ErrStream, err))
			return
		}
		if msg.Event != EventMessage {
			continue
		}
		if !yield(msg, nil) {
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		yield(Message{}, fmt.Errorf("%w: read stream: %v", ErrTransport, err))
	}
}

func (c *Client) streamWebSocket(ctx context.Context, options subscribeOptions, yield func(Message, error) bool) {
	endpoint, err := c.websocketURL(options)
	if err != nil {
		yield(Message{}, err)
		return
	}

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			yield(Message{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
			return
		}
		if ctx.Err() == nil {
			yield(Message{}, fmt.Errorf("%w: dial websocket: %v", ErrTransport, err))
		}
		return
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller cancels.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				yield(Message{}, fmt.Errorf("%w: read websocket: %v", ErrTransport, err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			yield(Message{}, fmt.Errorf("%w: decode event: %v", ErrStream, err))
			return
		}
		if msg.Event != EventMessage {
			continue
		}
		if !yield(msg, nil) {
			return
		}
	}
}

func (c *Client) websocketURL(options subscribeOptions) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse server URL: %v", ErrConfiguration, err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + c.topic + "/ws"
	parsed.RawQuery = options.query()
	return parsed.String(), nil
}
