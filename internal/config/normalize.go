package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeTopic()
	c.normalizeSubscribe()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeBridge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
	return nil
}

func (c *Config) normalizeTopic() {
	c.Topic.Name = strings.TrimSpace(c.Topic.Name)
	c.Topic.Method = strings.ToLower(strings.TrimSpace(c.Topic.Method))
	if c.Topic.Method == "" {
		c.Topic.Method = defaultTopicMethod
	}
	if c.Topic.Length <= 0 {
		c.Topic.Length = defaultTopicLength
	}
	if c.Topic.Complexity <= 0 {
		c.Topic.Complexity = defaultTopicComplexity
	}
}

func (c *Config) normalizeSubscribe() {
	c.Subscribe.Transport = strings.ToLower(strings.TrimSpace(c.Subscribe.Transport))
	if c.Subscribe.Transport == "" {
		c.Subscribe.Transport = defaultTransport
	}
	c.Subscribe.Since = strings.TrimSpace(c.Subscribe.Since)
}

func (c *Config) normalizeArchive() error {
	dir := strings.TrimSpace(c.Archive.Dir)
	if dir == "" {
		dir = defaultArchiveDir()
	}
	expanded, err := expandPath(dir)
	if err != nil {
		return fmt.Errorf("archive.dir: %w", err)
	}
	c.Archive.Dir = expanded
	return nil
}

func (c *Config) normalizeBridge() {
	c.Bridge.RedisAddr = strings.TrimSpace(c.Bridge.RedisAddr)
	c.Bridge.Channel = strings.TrimSpace(c.Bridge.Channel)
	if c.Bridge.RedisAddr == "" {
		c.Bridge.RedisAddr = defaultBridgeRedisAddr
	}
	if c.Bridge.Channel == "" {
		c.Bridge.Channel = defaultBridgeChannel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
