package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAlgo OpenAlgoConfig `yaml:"openalgo"`
	Client   ClientConfig   `yaml:"client"`
	Stream   StreamConfig   `yaml:"stream"`
	Recorder RecorderConfig `yaml:"recorder"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type OpenAlgoConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ClientConfig struct {
	APIKey    string        `yaml:"api_key"`
	Host      string        `yaml:"host"`
	Version   string        `yaml:"version"`
	WSURL     string        `yaml:"ws_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type StreamConfig struct {
	CommandBuffer    int                 `yaml:"command_buffer"`
	EventBuffer      int                 `yaml:"event_buffer"`
	HandshakeTimeout time.Duration       `yaml:"handshake_timeout"`
	CloseGracePeriod time.Duration       `yaml:"close_grace_period"`
	PingInterval     time.Duration       `yaml:"ping_interval"`
	Subscriptions    SubscriptionsConfig `yaml:"subscriptions"`
}

// SubscriptionsConfig lists "EXCHANGE:SYMBOL" entries per mode.
type SubscriptionsConfig struct {
	LTP   []string `yaml:"ltp"`
	Quote []string `yaml:"quote"`
	Depth []string `yaml:"depth"`
}

func (s SubscriptionsConfig) Empty() bool {
	return len(s.LTP) == 0 && len(s.Quote) == 0 && len(s.Depth) == 0
}

type RecorderConfig struct {
	Enabled       bool               `yaml:"enabled"`
	MaxBuffer     int                `yaml:"max_buffer"`
	FlushInterval time.Duration      `yaml:"flush_interval"`
	LocalDir      string             `yaml:"local_dir"`
	Partitioning  PartitioningConfig `yaml:"partitioning"`
}

type PartitioningConfig struct {
	TimeFormat     string   `yaml:"time_format"`
	AdditionalKeys []string `yaml:"additional_keys"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

type MetricsConfig struct {
	ChannelSize    bool             `yaml:"channel_size"`
	ReportInterval time.Duration    `yaml:"report_interval"`
	CloudWatch     CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

// Default returns the configuration used for any field the file leaves out.
func Default() Config {
	return Config{
		OpenAlgo: OpenAlgoConfig{Name: "openalgo", Version: "1.0"},
		Client: ClientConfig{
			Host:    "http://127.0.0.1:5000",
			Version: "v1",
			WSURL:   "ws://127.0.0.1:8765",
			Timeout: 30 * time.Second,
		},
		Stream: StreamConfig{
			CommandBuffer:    32,
			EventBuffer:      128,
			HandshakeTimeout: 10 * time.Second,
			CloseGracePeriod: time.Second,
		},
		Recorder: RecorderConfig{
			MaxBuffer:     1000,
			FlushInterval: time.Minute,
			Partitioning: PartitioningConfig{
				TimeFormat: "2006-01-02/15",
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Metrics: MetricsConfig{
			ChannelSize: true,
			CloudWatch:  CloudWatchConfig{Namespace: "OpenAlgo", Dashboard: "OpenAlgo"},
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("OPENALGO_API_KEY"); v != "" {
		config.Client.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("OPENALGO_HOST"); v != "" {
		config.Client.Host = strings.TrimSpace(v)
	}
	if v := os.Getenv("OPENALGO_WS_URL"); v != "" {
		config.Client.WSURL = strings.TrimSpace(v)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}
	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if config.Metrics.CloudWatch.Enabled && config.Metrics.CloudWatch.Region == "" {
		config.Metrics.CloudWatch.Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
}

func validateConfig(cfg *Config) error {
	if cfg.OpenAlgo.Name == "" {
		return fmt.Errorf("openalgo.name is required")
	}
	if cfg.OpenAlgo.Version == "" {
		return fmt.Errorf("openalgo.version is required")
	}

	if cfg.Client.Host == "" {
		return fmt.Errorf("client.host is required")
	}
	if u, err := url.Parse(cfg.Client.Host); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("client.host '%s' must be an http(s) url", cfg.Client.Host)
	}
	if cfg.Client.Version == "" {
		return fmt.Errorf("client.version is required")
	}
	if u, err := url.Parse(cfg.Client.WSURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("client.ws_url '%s' must be a ws(s) url", cfg.Client.WSURL)
	}
	if strings.TrimSpace(cfg.Client.APIKey) == "" && IsProductionLike(AppEnvironment()) {
		return fmt.Errorf("client.api_key is required in %s", AppEnvironment())
	}
	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be greater than 0")
	}

	if cfg.Stream.CommandBuffer <= 0 {
		return fmt.Errorf("stream.command_buffer must be greater than 0")
	}
	if cfg.Stream.EventBuffer <= 0 {
		return fmt.Errorf("stream.event_buffer must be greater than 0")
	}
	if cfg.Stream.PingInterval < 0 {
		return fmt.Errorf("stream.ping_interval must not be negative")
	}

	if cfg.Recorder.Enabled {
		if cfg.Recorder.MaxBuffer <= 0 {
			return fmt.Errorf("recorder.max_buffer must be greater than 0")
		}
		if cfg.Recorder.FlushInterval <= 0 {
			return fmt.Errorf("recorder.flush_interval must be greater than 0")
		}
		if !cfg.Storage.S3.Enabled && cfg.Recorder.LocalDir == "" {
			return fmt.Errorf("recorder needs storage.s3 or recorder.local_dir")
		}
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
