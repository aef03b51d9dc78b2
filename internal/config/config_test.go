package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chime/internal/config"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Server.BaseURL != "https://ntfy.sh" {
		t.Fatalf("unexpected base url: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 10 {
		t.Fatalf("unexpected request timeout: %d", cfg.Server.RequestTimeout)
	}
	if !cfg.Topic.AutoGenerate {
		t.Fatal("expected topic auto-generation enabled by default")
	}
	if cfg.Topic.Method != "random" {
		t.Fatalf("unexpected topic method: %q", cfg.Topic.Method)
	}
	if cfg.Subscribe.Transport != "json" {
		t.Fatalf("unexpected transport: %q", cfg.Subscribe.Transport)
	}
	wantArchive := filepath.Join(tempHome, ".local", "share", "chime")
	if cfg.Archive.Dir != wantArchive {
		t.Fatalf("unexpected archive dir: got %q want %q", cfg.Archive.Dir, wantArchive)
	}
	if cfg.Bridge.Enabled {
		t.Fatal("expected bridge disabled by default")
	}
	if cfg.Metrics.Enabled {
		t.Fatal("expected metrics disabled by default")
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[server]",
		`base_url = "https://push.example.com/"`,
		`token = " tk_secret "`,
		"",
		"[topic]",
		`name = " builds "`,
		`method = "UUID"`,
		"",
		"[subscribe]",
		`transport = "WS"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Server.BaseURL != "https://push.example.com" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Token != "tk_secret" {
		t.Fatalf("expected token trimmed, got %q", cfg.Server.Token)
	}
	if cfg.Topic.Name != "builds" {
		t.Fatalf("expected topic trimmed, got %q", cfg.Topic.Name)
	}
	if cfg.Topic.Method != "uuid" {
		t.Fatalf("expected method lowercased, got %q", cfg.Topic.Method)
	}
	if cfg.Subscribe.Transport != "ws" {
		t.Fatalf("expected transport lowercased, got %q", cfg.Subscribe.Transport)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		keyword string
	}{
		{
			name:    "bad base url",
			mutate:  func(c *config.Config) { c.Server.BaseURL = "ntfy.sh" },
			keyword: "server.base_url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *config.Config) { c.Server.BaseURL = "ftp://ntfy.sh" },
			keyword: "http or https",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *config.Config) { c.Server.RequestTimeout = 0 },
			keyword: "request_timeout",
		},
		{
			name:    "unknown method",
			mutate:  func(c *config.Config) { c.Topic.Method = "dice" },
			keyword: "topic.method",
		},
		{
			name: "hmac without secret",
			mutate: func(c *config.Config) {
				c.Topic.Method = "hmac"
				c.Topic.Identifier = "device-1"
			},
			keyword: "topic.secret",
		},
		{
			name:    "complexity out of range",
			mutate:  func(c *config.Config) { c.Topic.Complexity = 4 },
			keyword: "complexity",
		},
		{
			name:    "unknown transport",
			mutate:  func(c *config.Config) { c.Subscribe.Transport = "grpc" },
			keyword: "subscribe.transport",
		},
		{
			name: "bridge without channel",
			mutate: func(c *config.Config) {
				c.Bridge.Enabled = true
				c.Bridge.Channel = ""
			},
			keyword: "bridge.channel",
		},
		{
			name: "metrics without bind",
			mutate: func(c *config.Config) {
				c.Metrics.Enabled = true
				c.Metrics.Bind = ""
			},
			keyword: "metrics.bind",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("expected error mentioning %q, got %v", tc.keyword, err)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Server.BaseURL != "https://ntfy.sh" {
		t.Fatalf("unexpected base url in sample: %q", cfg.Server.BaseURL)
	}
}
