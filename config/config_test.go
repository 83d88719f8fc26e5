package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeTempConfig writes content to a temporary YAML file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENALGO_API_KEY", "OPENALGO_HOST", "OPENALGO_WS_URL", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", "S3_BUCKET", "APP_ENV"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `openalgo:
  name: "TestApp"
  version: "1.0"
client:
  api_key: "abc"
  ws_url: "wss://stream.example.com/ws"
stream:
  event_buffer: 256
  ping_interval: 15s
  subscriptions:
    ltp: ["NSE:RELIANCE", "NSE:TCS"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.OpenAlgo.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.OpenAlgo.Name)
	}
	if cfg.Client.APIKey != "abc" || cfg.Client.WSURL != "wss://stream.example.com/ws" {
		t.Errorf("unexpected client config: %+v", cfg.Client)
	}
	if cfg.Client.Host != "http://127.0.0.1:5000" || cfg.Client.Version != "v1" {
		t.Errorf("defaults not applied: %+v", cfg.Client)
	}
	if cfg.Stream.CommandBuffer != 32 || cfg.Stream.EventBuffer != 256 {
		t.Errorf("unexpected buffers: %+v", cfg.Stream)
	}
	if cfg.Stream.PingInterval != 15*time.Second {
		t.Errorf("unexpected ping interval: %v", cfg.Stream.PingInterval)
	}
	if len(cfg.Stream.Subscriptions.LTP) != 2 || cfg.Stream.Subscriptions.Empty() {
		t.Errorf("unexpected subscriptions: %+v", cfg.Stream.Subscriptions)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENALGO_API_KEY", " from-env ")
	t.Setenv("OPENALGO_WS_URL", "ws://10.0.0.1:8765")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "ticks-bucket")

	path := writeTempConfig(t, `client:
  api_key: "from-file"
storage:
  s3:
    enabled: true
    region: "ap-south-1"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Client.APIKey != "from-env" {
		t.Errorf("api key = %q", cfg.Client.APIKey)
	}
	if cfg.Client.WSURL != "ws://10.0.0.1:8765" {
		t.Errorf("ws url = %q", cfg.Client.WSURL)
	}
	if cfg.Storage.S3.Region != "eu-west-1" || cfg.Storage.S3.Bucket != "ticks-bucket" {
		t.Errorf("unexpected s3 config: %+v", cfg.Storage.S3)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad ws scheme":        "client:\n  ws_url: \"http://127.0.0.1:8765\"\n",
		"bad host":             "client:\n  host: \"127.0.0.1:5000\"\n",
		"zero event buffer":    "stream:\n  event_buffer: -1\n",
		"recorder no sink":     "recorder:\n  enabled: true\n  local_dir: \"\"\n",
		"s3 without bucket":    "storage:\n  s3:\n    enabled: true\n    region: \"x\"\n",
		"negative ping":        "stream:\n  ping_interval: -1s\n",
		"invalid bucket":       "storage:\n  s3:\n    enabled: true\n    region: \"x\"\n    bucket: \"Bad_Bucket\"\n",
		"missing name":         "openalgo:\n  name: \"\"\n",
		"non-positive timeout": "client:\n  timeout: 0s\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeTempConfig(t, content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigAPIKeyRequiredOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "client:\n  api_key: \"\"\n")

	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("development should tolerate a missing key: %v", err)
	}

	t.Setenv("APP_ENV", "prod")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "client.api_key") {
		t.Fatalf("expected api key error in production, got %v", err)
	}

	t.Setenv("OPENALGO_API_KEY", "from-env")
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("env key should satisfy production: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.production.yml"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("APP_ENV", "prod")
	if got, want := ResolvePath(""), filepath.Join("config", "config.production.yml"); got != want {
		t.Fatalf("ResolvePath(\"\") = %s, want %s", got, want)
	}
	if got := ResolvePath("custom.yml"); got != "custom.yml" {
		t.Fatalf("explicit path should win, got %s", got)
	}

	t.Setenv("APP_ENV", "staging")
	if got := ResolvePath(""); got != DefaultPath {
		t.Fatalf("expected default path without staging file, got %s", got)
	}
	if !IsProductionLike(AppEnvironment()) {
		t.Fatal("staging should be production-like")
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"valid-bucket", true},
		{"Invalid", false},
		{"ab", false},
		{"my..bucket", false},
	}
	for _, c := range cases {
		if got := isValidS3Bucket(c.name); got != c.valid {
			t.Errorf("isValidS3Bucket(%q) = %v, want %v", c.name, got, c.valid)
		}
	}
}
