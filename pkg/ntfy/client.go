package ntfy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chime/pkg/topic"
)

const (
	// DefaultServer is the public ntfy instance.
	DefaultServer = "https://ntfy.sh"

	defaultTimeout = 10 * time.Second
	userAgent      = "chime/0.1.0"

	autoTopicBytes = 16
)

// Client publishes to and subscribes from a single ntfy topic. Configuration
// is fixed at construction; a Client is safe for concurrent use.
type Client struct {
	baseURL string
	topic   string
	token   string
	http    *http.Client
	// stream carries no timeout; subscriptions are long-lived.
	stream *http.Client
}

type clientOptions struct {
	baseURL    string
	topic      string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	autoTopic  bool
}

// Option configures client construction.
type Option func(*clientOptions)

// WithServer overrides the base server URL. Trailing slashes are stripped.
func WithServer(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/") }
}

// WithTopic binds the client to an explicit topic.
func WithTopic(name string) Option {
	return func(o *clientOptions) { o.topic = name }
}

// WithToken sets a bearer token for servers that require authentication.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = strings.TrimSpace(token) }
}

// WithTimeout sets the per-request timeout for publishes. Subscriptions are
// long-lived and are not subject to this timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) { o.timeout = timeout }
}

// WithHTTPClient supplies a custom HTTP client, e.g. for tests or proxies.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

// WithoutAutoTopic disables topic auto-generation, making an explicit topic
// mandatory.
func WithoutAutoTopic() Option {
	return func(o *clientOptions) { o.autoTopic = false }
}

// New constructs a client. When no topic is supplied and auto-generation is
// enabled (the default), a securely random topic is generated; retrieve it
// with Topic. Without auto-generation a missing topic is a configuration
// error.
func New(opts ...Option) (*Client, error) {
	options := clientOptions{
		baseURL:   DefaultServer,
		timeout:   defaultTimeout,
		autoTopic: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	parsed, err := url.Parse(options.baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: server URL %q is not absolute", ErrConfiguration, options.baseURL)
	}

	name := topic.Normalize(options.topic)
	if name == "" {
		if !options.autoTopic {
			return nil, fmt.Errorf("%w: no topic supplied and auto-generation disabled", ErrConfiguration)
		}
		name, err = topic.Random(autoTopicBytes, topic.EncodingHex)
		if err != nil {
			return nil, fmt.Errorf("%w: generate topic: %v", ErrConfiguration, err)
		}
	}
	if err := topic.Validate(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	httpClient := options.httpClient
	streamClient := options.httpClient
	if httpClient == nil {
		timeout := options.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		streamClient = &http.Client{}
	}

	return &Client{
		baseURL: options.baseURL,
		topic:   name,
		token:   options.token,
		http:    httpClient,
		stream:  streamClient,
	}, nil
}

// Topic returns the topic the client is bound to.
func (c *Client) Topic() string { return c.topic }

// Server returns the base server URL the client publishes to.
func (c *Client) Server() string { return c.baseURL }

func (c *Client) topicURL() string {
	return c.baseURL + "/" + c.topic
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
