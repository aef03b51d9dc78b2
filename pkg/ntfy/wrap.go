package ntfy

import (
	"context"
	"fmt"
)

// Wrap returns a function that invokes fn and then publishes exactly one
// notification, whether fn succeeded or failed. The original error passes
// through unchanged; a failure notification carries the error text at high
// priority. A publish failure is surfaced only when fn itself succeeded;
// fn's error always takes precedence.
func (c *Client) Wrap(fn func(context.Context) error, message string, opts ...PublishOption) func(context.Context) error {
	return func(ctx context.Context) error {
		err := fn(ctx)
		if pubErr := c.publishOutcome(ctx, message, err, opts); pubErr != nil {
			if err != nil {
				return err
			}
			return pubErr
		}
		return err
	}
}

// Notify runs fn and publishes a notification after it returns. The value and
// error from fn pass through unmodified; when fn succeeds but the publish
// fails, the publish error is returned alongside fn's value.
func Notify[T any](ctx context.Context, c *Client, message string, fn func() (T, error), opts ...PublishOption) (T, error) {
	value, err := fn()
	if pubErr := c.publishOutcome(ctx, message, err, opts); pubErr != nil && err == nil {
		return value, pubErr
	}
	return value, err
}

func (c *Client) publishOutcome(ctx context.Context, message string, callErr error, opts []PublishOption) error {
	if callErr != nil {
		failureOpts := append(append([]PublishOption{}, opts...), WithPriority(PriorityHigh))
		failed := fmt.Sprintf("%s failed: %v", message, callErr)
		return c.Publish(ctx, failed, failureOpts...)
	}
	return c.Publish(ctx, message, opts...)
}
