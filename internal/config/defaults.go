package config

const (
	defaultBaseURL            = "https://ntfy.sh"
	defaultRequestTimeout     = 10
	defaultTopicMethod        = "random"
	defaultTopicLength        = 16
	defaultTopicComplexity    = 2
	defaultTransport          = "json"
	defaultBridgeRedisAddr    = "127.0.0.1:6379"
	defaultBridgeChannel      = "chime:messages"
	defaultDedupWindowSeconds = 600
	defaultMetricsBind        = "127.0.0.1:9321"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Topic: Topic{
			AutoGenerate: true,
			Method:       defaultTopicMethod,
			Length:       defaultTopicLength,
			Complexity:   defaultTopicComplexity,
		},
		Subscribe: Subscribe{
			Transport: defaultTransport,
		},
		Archive: Archive{
			Enabled: true,
			Dir:     defaultArchiveDir(),
		},
		Bridge: Bridge{
			RedisAddr:          defaultBridgeRedisAddr,
			Channel:            defaultBridgeChannel,
			DedupWindowSeconds: defaultDedupWindowSeconds,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
