package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var validTopicMethods = map[string]struct{}{
	"random":   {},
	"hmac":     {},
	"uuid":     {},
	"compound": {},
}

var validTransports = map[string]struct{}{
	"json": {},
	"sse":  {},
	"ws":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTopic(); err != nil {
		return err
	}
	if err := c.validateSubscribe(); err != nil {
		return err
	}
	if err := c.validateBridge(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.base_url must be an absolute URL, got %q", c.Server.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https, got %q", parsed.Scheme)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateTopic() error {
	if _, ok := validTopicMethods[c.Topic.Method]; !ok {
		return fmt.Errorf("topic.method must be one of random, hmac, uuid, compound; got %q", c.Topic.Method)
	}
	if c.Topic.Method == "hmac" {
		if strings.TrimSpace(c.Topic.Secret) == "" {
			return errors.New("topic.secret must be set when topic.method is hmac")
		}
		if strings.TrimSpace(c.Topic.Identifier) == "" {
			return errors.New("topic.identifier must be set when topic.method is hmac")
		}
	}
	if c.Topic.Length <= 0 {
		return errors.New("topic.length must be positive")
	}
	if c.Topic.Complexity < 1 || c.Topic.Complexity > 3 {
		return errors.New("topic.complexity must be between 1 and 3")
	}
	return nil
}

func (c *Config) validateSubscribe() error {
	if _, ok := validTransports[c.Subscribe.Transport]; !ok {
		return fmt.Errorf("subscribe.transport must be one of json, sse, ws; got %q", c.Subscribe.Transport)
	}
	return nil
}

func (c *Config) validateBridge() error {
	if !c.Bridge.Enabled {
		return nil
	}
	if c.Bridge.RedisAddr == "" {
		return errors.New("bridge.redis_addr must be set when bridge.enabled is true")
	}
	if c.Bridge.Channel == "" {
		return errors.New("bridge.channel must be set when bridge.enabled is true")
	}
	if c.Bridge.RedisDB < 0 {
		return errors.New("bridge.redis_db must be >= 0")
	}
	if c.Bridge.DedupWindowSeconds < 0 {
		return errors.New("bridge.dedup_window_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Bind) == "" {
		return errors.New("metrics.bind must be set when metrics.enabled is true")
	}
	return nil
}
