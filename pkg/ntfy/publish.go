package ntfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Priority levels understood by ntfy.
const (
	PriorityMin     = 1
	PriorityLow     = 2
	PriorityDefault = 3
	PriorityHigh    = 4
	PriorityMax     = 5
)

type publishOptions struct {
	title    string
	priority int
	tags     []string
	click    string
	delay    string
	markdown bool
}

// PublishOption decorates a single notification.
type PublishOption func(*publishOptions)

// WithTitle sets the notification title.
func WithTitle(title string) PublishOption {
	return func(o *publishOptions) { o.title = strings.TrimSpace(title) }
}

// WithPriority sets the notification priority (PriorityMin..PriorityMax).
func WithPriority(priority int) PublishOption {
	return func(o *publishOptions) { o.priority = priority }
}

// WithTags attaches tags; the first few render as emoji on most clients.
func WithTags(tags ...string) PublishOption {
	return func(o *publishOptions) { o.tags = tags }
}

// WithClick sets the URL opened when the notification is tapped.
func WithClick(url string) PublishOption {
	return func(o *publishOptions) { o.click = strings.TrimSpace(url) }
}

// WithDelay schedules delivery, e.g. "30m" or "tomorrow, 10am".
func WithDelay(delay string) PublishOption {
	return func(o *publishOptions) { o.delay = strings.TrimSpace(delay) }
}

// WithDelayDuration schedules delivery after a duration.
func WithDelayDuration(d time.Duration) PublishOption {
	return func(o *publishOptions) { o.delay = strconv.Itoa(int(d.Seconds())) + "s" }
}

// WithMarkdown asks supporting clients to render the message as Markdown.
func WithMarkdown() PublishOption {
	return func(o *publishOptions) { o.markdown = true }
}

// Publish sends one notification to the client's topic. It issues exactly one
// request and does not retry; a non-success response surfaces as *StatusError.
func (c *Client) Publish(ctx context.Context, message string, opts ...PublishOption) error {
	var options publishOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.priority != 0 && (options.priority < PriorityMin || options.priority > PriorityMax) {
		return fmt.Errorf("%w: priority %d out of range", ErrConfiguration, options.priority)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.topicURL(), strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	c.authorize(req)
	if options.title != "" {
		req.Header.Set("Title", options.title)
	}
	if options.priority != 0 && options.priority != PriorityDefault {
		req.Header.Set("Priority", strconv.Itoa(options.priority))
	}
	if len(options.tags) > 0 {
		req.Header.Set("Tags", strings.Join(options.tags, ","))
	}
	if options.click != "" {
		req.Header.Set("Click", options.click)
	}
	if options.delay != "" {
		req.Header.Set("Delay", options.delay)
	}
	if options.markdown {
		req.Header.Set("Markdown", "yes")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
