// Package config loads dora-assist settings from a TOML file with environment
// overrides. A missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the complete application configuration.
type Config struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int64  `toml:"max_tokens"`

	// APIKeyEnv names the environment variable the key is loaded from at startup.
	APIKeyEnv    string `toml:"api_key_env"`
	SystemPrompt string `toml:"system_prompt"`

	MaxRounds      int      `toml:"max_rounds"`
	RequestTimeout Duration `toml:"request_timeout"`
	QueueSize      int      `toml:"queue_size"`
	PollInterval   Duration `toml:"poll_interval"`

	Sandbox   SandboxConfig   `toml:"sandbox"`
	Tools     ToolsConfig     `toml:"tools"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// SandboxConfig bounds file tools. Empty roots mean the working directory.
type SandboxConfig struct {
	ReadRoot  string `toml:"read_root"`
	WriteRoot string `toml:"write_root"`
}

// ToolsConfig configures the built-in tool catalog.
type ToolsConfig struct {
	DoraBinary     string   `toml:"dora_binary"`
	CommandTimeout Duration `toml:"command_timeout"`
	// Enabled restricts the catalog to the named tools. Empty enables all.
	Enabled []string `toml:"enabled"`
}

// LogConfig configures the slog output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// TelemetryConfig configures the local JSONL event sink.
type TelemetryConfig struct {
	Observe bool   `toml:"observe"`
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration that decodes from strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:       ProviderAnthropic,
		Model:          "claude-sonnet-4-20250514",
		MaxTokens:      4096,
		APIKeyEnv:      "ANTHROPIC_API_KEY",
		SystemPrompt:   DefaultSystemPrompt,
		MaxRounds:      10,
		RequestTimeout: Duration{120 * time.Second},
		QueueSize:      16,
		PollInterval:   Duration{100 * time.Millisecond},
		Tools: ToolsConfig{
			DoraBinary:     "dora",
			CommandTimeout: Duration{60 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   ".agent/agent.log",
		},
		Telemetry: TelemetryConfig{Dir: ".agent"},
	}
}

// DefaultSystemPrompt primes the model for dataflow work.
const DefaultSystemPrompt = `You are an assistant for the dora-rs dataflow framework.
You can list, start, stop and destroy dataflows, read their logs, run shell commands,
and read or write files in the workspace. Use tools when they help answer the user,
and explain what you did in plain language.`

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are not applied; call ApplyEnvOverrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes path into cfg, rejecting unknown keys.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnvOverrides applies AGT_* environment variables. Malformed numeric
// values are reported and leave the field unchanged.
func (c *Config) ApplyEnvOverrides() error {
	var errs []error
	if v := os.Getenv("AGT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("AGT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("AGT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("AGT_MAX_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AGT_MAX_ROUNDS: %w", err))
		} else {
			c.MaxRounds = n
		}
	}
	if v := os.Getenv("AGT_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AGT_REQUEST_TIMEOUT: %w", err))
		} else {
			c.RequestTimeout = Duration{d}
		}
	}
	if v := os.Getenv("AGT_READ_ROOT"); v != "" {
		c.Sandbox.ReadRoot = v
	}
	if v := os.Getenv("AGT_WRITE_ROOT"); v != "" {
		c.Sandbox.WriteRoot = v
	}
	if v := os.Getenv("AGT_DORA_BINARY"); v != "" {
		c.Tools.DoraBinary = v
	}
	if v := os.Getenv("AGT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AGT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return errors.Join(errs...)
}

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate reports all invalid fields at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		add("provider", "invalid provider %q, must be one of: anthropic, openai", c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		add("model", "must not be empty")
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("base_url", "invalid URL %q", c.BaseURL)
		}
	}
	if c.MaxTokens <= 0 {
		add("max_tokens", "must be positive")
	}
	if c.MaxRounds < 1 {
		add("max_rounds", "must be at least 1")
	}
	if c.RequestTimeout.Duration < 0 {
		add("request_timeout", "cannot be negative")
	}
	if c.QueueSize < 1 {
		add("queue_size", "must be at least 1")
	}
	if c.PollInterval.Duration <= 0 {
		add("poll_interval", "must be positive")
	}
	if c.Tools.CommandTimeout.Duration < 0 {
		add("tools.command_timeout", "cannot be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "invalid level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		add("log.format", "invalid format %q, must be text or json", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
