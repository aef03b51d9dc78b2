package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"chime/internal/config"
	"chime/pkg/ntfy"
	"chime/pkg/topic"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newClient builds an ntfy client from the loaded configuration. An explicit
// topicOverride wins over the configured topic; with neither set the topic is
// generated using the configured method.
func (c *commandContext) newClient(topicOverride string) (*ntfy.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(topicOverride)
	if name == "" {
		name = strings.TrimSpace(cfg.Topic.Name)
	}
	if name == "" {
		if !cfg.Topic.AutoGenerate {
			return nil, fmt.Errorf("no topic configured; set topic.name, pass --topic, or enable topic.auto_generate")
		}
		name, err = generateTopic(&cfg.Topic)
		if err != nil {
			return nil, fmt.Errorf("generate topic: %w", err)
		}
	}

	return ntfy.New(
		ntfy.WithServer(cfg.Server.BaseURL),
		ntfy.WithTopic(name),
		ntfy.WithToken(cfg.Server.Token),
		ntfy.WithTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
	)
}

// generateTopic produces a topic name using the configured method.
func generateTopic(cfg *config.Topic) (string, error) {
	switch cfg.Method {
	case "hmac":
		return topic.HMAC(cfg.Secret, cfg.Identifier)
	case "uuid":
		return topic.UUID(), nil
	case "compound":
		return topic.Compound(cfg.Name)
	default:
		return topic.Random(cfg.Length, encodingForComplexity(cfg.Complexity))
	}
}

func encodingForComplexity(complexity int) topic.Encoding {
	switch complexity {
	case 1:
		return topic.EncodingBase64
	case 2:
		return topic.EncodingHex
	default:
		return topic.EncodingBase64URL
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
