package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.Identity = "team5b"
	cfg.TypingWindow = Duration{5 * time.Second}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Identity != "team5b" {
		t.Errorf("Identity = %q, want %q", loaded.Identity, "team5b")
	}
	if loaded.TypingWindow.Duration != 5*time.Second {
		t.Errorf("TypingWindow = %s, want 5s", loaded.TypingWindow)
	}
	if !slices.Equal(loaded.Candidates, cfg.Candidates) {
		t.Errorf("Candidates = %v, want %v", loaded.Candidates, cfg.Candidates)
	}
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespace != Default().Namespace || cfg.Broker != DefaultBroker {
		t.Errorf("Load() of a missing file = %+v, want defaults", cfg)
	}
}

func TestResolveIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("NAMESPACE", "kube-system")
	t.Setenv("IDENTITY", "x9")
	t.Setenv("BROKER", "tcp://elsewhere:1883")
	t.Setenv("QOS", "2")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Namespace != Default().Namespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, Default().Namespace)
	}
	if cfg.Identity != "" {
		t.Errorf("Identity = %q, want empty", cfg.Identity)
	}
	if cfg.Broker != DefaultBroker {
		t.Errorf("Broker = %q, want %q", cfg.Broker, DefaultBroker)
	}
	if cfg.QoS != 0 {
		t.Errorf("QoS = %d, want 0", cfg.QoS)
	}
}

func TestResolvePrefixedEnv(t *testing.T) {
	t.Setenv("MQCHAT_NAMESPACE", "lab")
	t.Setenv("MQCHAT_IDENTITY", "team3a")
	t.Setenv("MQCHAT_QOS", "1")
	t.Setenv("MQCHAT_TYPING_WINDOW", "500ms")
	t.Setenv("MQCHAT_LOG_LEVEL", "debug")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Namespace != "lab" || cfg.Identity != "team3a" || cfg.QoS != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.TypingWindow.Duration != 500*time.Millisecond {
		t.Errorf("TypingWindow = %s, want 500ms", cfg.TypingWindow)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestResolveDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Namespace != "ttm4175" {
		t.Errorf("Namespace = %q, want ttm4175", cfg.Namespace)
	}
	if cfg.Broker != DefaultBroker {
		t.Errorf("Broker = %q, want %q", cfg.Broker, DefaultBroker)
	}
	if cfg.TypingWindow.Duration != 3*time.Second {
		t.Errorf("TypingWindow = %s, want 3s", cfg.TypingWindow)
	}
	if len(cfg.Candidates) != 30 {
		t.Errorf("len(Candidates) = %d, want 30", len(cfg.Candidates))
	}
}

func TestResolvePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
identity = "team3a"
broker = "tcp://file:1883"
typing_window = "1s"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MQCHAT_BROKER", "tcp://env:1883")
	t.Setenv("MQCHAT_CANDIDATES", "team3a,team5b")

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Identity != "team3a" {
		t.Errorf("Identity = %q, want team3a (from file)", cfg.Identity)
	}
	if cfg.Broker != "tcp://env:1883" {
		t.Errorf("Broker = %q, want env override", cfg.Broker)
	}
	if cfg.TypingWindow.Duration != time.Second {
		t.Errorf("TypingWindow = %s, want 1s", cfg.TypingWindow)
	}
	if !slices.Equal(cfg.Candidates, []string{"team3a", "team5b"}) {
		t.Errorf("Candidates = %v", cfg.Candidates)
	}
}

func TestResolveBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("broker = ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(path); err == nil {
		t.Error("Resolve() expected error for malformed file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"qos 2", func(c *Config) { c.QoS = 2 }, false},
		{"empty namespace", func(c *Config) { c.Namespace = "" }, true},
		{"wildcard namespace", func(c *Config) { c.Namespace = "ttm/+" }, true},
		{"empty broker", func(c *Config) { c.Broker = "" }, true},
		{"broker without scheme", func(c *Config) { c.Broker = "localhost:1883" }, true},
		{"qos 3", func(c *Config) { c.QoS = 3 }, true},
		{"negative qos", func(c *Config) { c.QoS = -1 }, true},
		{"zero window", func(c *Config) { c.TypingWindow = Duration{} }, true},
		{"no candidates", func(c *Config) { c.Candidates = nil }, true},
		{"blank candidate", func(c *Config) { c.Candidates = []string{"team1a", ""} }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero retention", func(c *Config) { c.JournalRetention = Duration{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
