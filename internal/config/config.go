package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDir = "coldkeys"

type Config struct {
	Profiles ProfilesConfig `yaml:"profiles"`
	// Devices is the pre-configured selection of device paths. Empty means ask.
	Devices  []string       `yaml:"devices"`
	Logging  LoggingConfig  `yaml:"logging"`
	Trace    TraceConfig    `yaml:"trace"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Input    InputConfig    `yaml:"input"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ProfilesConfig struct {
	Dir    string `yaml:"dir"`
	Active string `yaml:"active"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type TraceConfig struct {
	File string     `yaml:"file"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig mirrors the trace channel to a broker. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

type DispatchConfig struct {
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

type InputConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	KeySender    string        `yaml:"key_sender"`
}

type MetricsConfig struct {
	// Listen is the address of the status and metrics endpoint. Empty disables it.
	Listen string `yaml:"listen"`
}

// Key sender backends.
const (
	KeySenderAuto   = "auto"
	KeySenderUinput = "uinput"
	KeySenderX11    = "x11"
	KeySenderNone   = "none"
)

// Dir returns the per-user ColdKeys directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", "."+appDir)
	}
	return filepath.Join(configDir, appDir)
}

// DefaultPath is the config file read when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() *Config {
	return &Config{
		Profiles: ProfilesConfig{
			Dir:    filepath.Join(Dir(), "profiles"),
			Active: "default",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Trace: TraceConfig{
			MQTT: MQTTConfig{
				Topic:    "coldkeys/trace",
				ClientID: "coldkeys",
				QoS:      0,
			},
		},
		Dispatch: DispatchConfig{
			Workers:        4,
			QueueSize:      64,
			CommandTimeout: 10 * time.Second,
		},
		Input: InputConfig{
			PollInterval: 10 * time.Millisecond,
			KeySender:    KeySenderAuto,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COLDKEYS_PROFILES_DIR"); v != "" {
		cfg.Profiles.Dir = v
	}
	if v := os.Getenv("COLDKEYS_PROFILE"); v != "" {
		cfg.Profiles.Active = v
	}
	if v := os.Getenv("COLDKEYS_DEVICES"); v != "" {
		cfg.Devices = splitList(v)
	}

	if v := os.Getenv("COLDKEYS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COLDKEYS_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	if v := os.Getenv("COLDKEYS_TRACE_FILE"); v != "" {
		cfg.Trace.File = v
	}
	if v := os.Getenv("COLDKEYS_MQTT_BROKER"); v != "" {
		cfg.Trace.MQTT.Broker = v
	}
	if v := os.Getenv("COLDKEYS_MQTT_USERNAME"); v != "" {
		cfg.Trace.MQTT.Username = v
	}
	if v := os.Getenv("COLDKEYS_MQTT_PASSWORD"); v != "" {
		cfg.Trace.MQTT.Password = v
	}

	if v := os.Getenv("COLDKEYS_KEY_SENDER"); v != "" {
		cfg.Input.KeySender = v
	}
	if v := os.Getenv("COLDKEYS_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every problem in one error.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Profiles.Dir) == "" {
		errs = append(errs, "profiles.dir is required")
	}
	if strings.TrimSpace(c.Profiles.Active) == "" {
		errs = append(errs, "profiles.active is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}

	if c.Trace.MQTT.Broker != "" && strings.TrimSpace(c.Trace.MQTT.Topic) == "" {
		errs = append(errs, "trace.mqtt.topic is required when a broker is set")
	}
	if c.Trace.MQTT.QoS < 0 || c.Trace.MQTT.QoS > 2 {
		errs = append(errs, "trace.mqtt.qos must be 0, 1, or 2")
	}

	if c.Dispatch.Workers < 1 {
		errs = append(errs, "dispatch.workers must be at least 1")
	}
	if c.Dispatch.QueueSize < 1 {
		errs = append(errs, "dispatch.queue_size must be at least 1")
	}
	if c.Dispatch.CommandTimeout <= 0 {
		errs = append(errs, "dispatch.command_timeout must be positive")
	}

	if c.Input.PollInterval <= 0 || c.Input.PollInterval > time.Second {
		errs = append(errs, "input.poll_interval must be between 0 and 1s")
	}
	switch c.Input.KeySender {
	case KeySenderAuto, KeySenderUinput, KeySenderX11, KeySenderNone:
	default:
		errs = append(errs, fmt.Sprintf("input.key_sender %q must be auto, uinput, x11 or none", c.Input.KeySender))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
