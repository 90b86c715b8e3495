package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/matheus3301/mqchat/internal/chat"
	"github.com/matheus3301/mqchat/internal/protocol"
	"go.uber.org/zap/zapcore"
)


const (
	DefaultBroker           = "tcp://mqtt20.iik.ntnu.no:1883"
	DefaultTypingWindow     = 3 * time.Second
	DefaultLogLevel         = "info"
	DefaultJournalRetention = 7 * 24 * time.Hour
)

// Duration is a time.Duration written as a string ("3s") in TOML and env.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents ~/.mqchat/config.toml after environment overrides.
//
// The envconfig tags carry the full variable name and are processed without
// a prefix: a tag is also envconfig's fallback name, so a bare "NAMESPACE"
// tag would read an unrelated NAMESPACE variable.
type Config struct {
	Identity         string   `toml:"identity" envconfig:"MQCHAT_IDENTITY"`
	Namespace        string   `toml:"namespace" envconfig:"MQCHAT_NAMESPACE" validate:"required,excludesall=/+#"`
	Broker           string   `toml:"broker" envconfig:"MQCHAT_BROKER" validate:"required"`
	Candidates       []string `toml:"candidates" envconfig:"MQCHAT_CANDIDATES" validate:"required,min=1,dive,required"`
	TypingWindow     Duration `toml:"typing_window" envconfig:"MQCHAT_TYPING_WINDOW"`
	QoS              int      `toml:"qos" envconfig:"MQCHAT_QOS" validate:"min=0,max=2"`
	LogLevel         string   `toml:"log_level" envconfig:"MQCHAT_LOG_LEVEL"`
	JournalRetention Duration `toml:"journal_retention" envconfig:"MQCHAT_JOURNAL_RETENTION"`
}

// Default returns the configuration used when no file or env override exists.
func Default() *Config {
	return &Config{
		Namespace:        protocol.DefaultNamespace,
		Broker:           DefaultBroker,
		Candidates:       chat.DefaultCandidates(),
		TypingWindow:     Duration{DefaultTypingWindow},
		QoS:              0,
		LogLevel:         DefaultLogLevel,
		JournalRetention: Duration{DefaultJournalRetention},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.TypingWindow.Duration <= 0 {
		return fmt.Errorf("invalid config: typing_window must be positive, got %s", c.TypingWindow)
	}
	if c.JournalRetention.Duration <= 0 {
		return fmt.Errorf("invalid config: journal_retention must be positive, got %s", c.JournalRetention)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: log_level: %w", err)
	}
	if !strings.Contains(c.Broker, "://") {
		return fmt.Errorf("invalid config: broker %q must be a URL like tcp://host:port", c.Broker)
	}
	return nil
}

// Load reads the file at path over the defaults, without environment
// overrides or validation. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path if it exists, then MQCHAT_* environment variables. The result is validated.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
