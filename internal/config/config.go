// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete keyai configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Knowledge-chat service
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Account service and credential store
	Account AccountConfig `toml:"account" json:"account"`

	// Gesture routing timings
	Input InputConfig `toml:"input" json:"input"`

	// Overlay animation timings
	Overlay OverlayConfig `toml:"overlay" json:"overlay"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// ChatConfig configures the knowledge-chat client.
type ChatConfig struct {
	Endpoint          string `toml:"endpoint" json:"endpoint"`
	TimeoutSecs       int    `toml:"timeout_secs" json:"timeout_secs"`
	RegeneratePhrase  string `toml:"regenerate_phrase" json:"regenerate_phrase"`
	MaxResponseBytes  int64  `toml:"max_response_bytes" json:"max_response_bytes"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"` // 0 = unlimited
	UserAgent         string `toml:"user_agent" json:"user_agent"`
}

// AccountConfig configures login and the shared user file.
type AccountConfig struct {
	APIBase     string `toml:"api_base" json:"api_base"`
	UserFile    string `toml:"user_file" json:"user_file"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// InputConfig contains the router timings and the question limit.
type InputConfig struct {
	// SettleDelayMs is how long after a character key the composition
	// engine is sampled for committed text.
	SettleDelayMs     int `toml:"settle_delay_ms" json:"settle_delay_ms"`
	RepeatIntervalMs  int `toml:"repeat_interval_ms" json:"repeat_interval_ms"`
	MaxQuestionLength int `toml:"max_question_length" json:"max_question_length"`
}

// OverlayConfig contains the overlay animation timings.
type OverlayConfig struct {
	AnimationMs  int `toml:"animation_ms" json:"animation_ms"`
	FocusDelayMs int `toml:"focus_delay_ms" json:"focus_delay_ms"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `toml:"level" json:"level"` // debug, info, warn, error
	File  string `toml:"file" json:"file"`   // empty means ~/.keyai/keyai.log
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Chat: ChatConfig{
			Endpoint:          chat.DefaultEndpoint,
			TimeoutSecs:       int(chat.DefaultTimeout / time.Second),
			RegeneratePhrase:  chat.DefaultRegeneratePhrase,
			MaxResponseBytes:  chat.DefaultMaxResponseBytes,
			RequestsPerMinute: chat.DefaultRequestsPerMinute,
			UserAgent:         chat.DefaultUserAgent,
		},
		Account: AccountConfig{
			APIBase:     auth.DefaultAPIBase,
			UserFile:    "",
			TimeoutSecs: int(auth.DefaultTimeout / time.Second),
		},
		Input: InputConfig{
			SettleDelayMs:     10,
			RepeatIntervalMs:  100,
			MaxQuestionLength: 500,
		},
		Overlay: OverlayConfig{
			AnimationMs:  300,
			FocusDelayMs: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the keyai configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".keyai"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	for _, candidate := range []struct {
		path func() (string, error)
		load func(*Config, string) error
		kind string
	}{
		{ConfigPathTOML, LoadTOML, "TOML"},
		{ConfigPathJSON, LoadJSON, "JSON"},
	} {
		path, err := candidate.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg := Default()
		if err := candidate.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s config: %w", candidate.kind, err)
			continue
		}
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	// Defaults, with any load error for informational purposes.
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies env overrides, migration, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return fmt.Errorf("config migration failed: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing string values with defaults.
// Numeric zero values are handled by SetDefaults, since some of them
// (requests_per_minute) are meaningful.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Chat
	if cfg.Chat.Endpoint == "" {
		cfg.Chat.Endpoint = defaults.Chat.Endpoint
	}
	if cfg.Chat.RegeneratePhrase == "" {
		cfg.Chat.RegeneratePhrase = defaults.Chat.RegeneratePhrase
	}
	if cfg.Chat.UserAgent == "" {
		cfg.Chat.UserAgent = defaults.Chat.UserAgent
	}

	// Account
	if cfg.Account.APIBase == "" {
		cfg.Account.APIBase = defaults.Account.APIBase
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# keyai configuration file\n")
	b.WriteString("# Generated by keyai - edit with care\n")
	b.WriteString("\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Chat
	if err := validateHTTPURL(c.Chat.Endpoint); err != nil {
		add("chat.endpoint", "%v", err)
	}
	if c.Chat.TimeoutSecs < 10 || c.Chat.TimeoutSecs > 300 {
		add("chat.timeout_secs", "must be between 10 and 300, got %d", c.Chat.TimeoutSecs)
	}
	if strings.TrimSpace(c.Chat.RegeneratePhrase) == "" {
		add("chat.regenerate_phrase", "must not be empty")
	}
	if c.Chat.MaxResponseBytes < 1024 {
		add("chat.max_response_bytes", "must be at least 1024, got %d", c.Chat.MaxResponseBytes)
	}
	if c.Chat.RequestsPerMinute < 0 {
		add("chat.requests_per_minute", "must not be negative, got %d", c.Chat.RequestsPerMinute)
	}

	// Account
	if err := validateHTTPURL(c.Account.APIBase); err != nil {
		add("account.api_base", "%v", err)
	}
	if c.Account.TimeoutSecs < 1 || c.Account.TimeoutSecs > 300 {
		add("account.timeout_secs", "must be between 1 and 300, got %d", c.Account.TimeoutSecs)
	}

	// Input
	if c.Input.SettleDelayMs < 1 || c.Input.SettleDelayMs > 1000 {
		add("input.settle_delay_ms", "must be between 1 and 1000, got %d", c.Input.SettleDelayMs)
	}
	if c.Input.RepeatIntervalMs < 20 || c.Input.RepeatIntervalMs > 2000 {
		add("input.repeat_interval_ms", "must be between 20 and 2000, got %d", c.Input.RepeatIntervalMs)
	}
	if c.Input.MaxQuestionLength < 1 {
		add("input.max_question_length", "must be positive, got %d", c.Input.MaxQuestionLength)
	}

	// Overlay
	if c.Overlay.AnimationMs < 0 || c.Overlay.AnimationMs > 5000 {
		add("overlay.animation_ms", "must be between 0 and 5000, got %d", c.Overlay.AnimationMs)
	}
	if c.Overlay.FocusDelayMs < 0 || c.Overlay.FocusDelayMs > 5000 {
		add("overlay.focus_delay_ms", "must be between 0 and 5000, got %d", c.Overlay.FocusDelayMs)
	}

	// Log
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateHTTPURL requires an absolute http(s) URL.
func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// SetDefaults fills zero numeric values that have no meaning as zero.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Chat.TimeoutSecs == 0 {
		c.Chat.TimeoutSecs = d.Chat.TimeoutSecs
	}
	if c.Chat.MaxResponseBytes == 0 {
		c.Chat.MaxResponseBytes = d.Chat.MaxResponseBytes
	}
	if c.Account.TimeoutSecs == 0 {
		c.Account.TimeoutSecs = d.Account.TimeoutSecs
	}
	if c.Input.SettleDelayMs == 0 {
		c.Input.SettleDelayMs = d.Input.SettleDelayMs
	}
	if c.Input.RepeatIntervalMs == 0 {
		c.Input.RepeatIntervalMs = d.Input.RepeatIntervalMs
	}
	if c.Input.MaxQuestionLength == 0 {
		c.Input.MaxQuestionLength = d.Input.MaxQuestionLength
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// Migrate upgrades older config files in place.
func (c *Config) Migrate() error {
	switch c.Version {
	case "", "0":
		// Version 0 stored the chat timeout in milliseconds.
		if c.Chat.TimeoutSecs > 1000 {
			c.Chat.TimeoutSecs /= 1000
		}
		c.Version = CurrentVersion
	case CurrentVersion:
	default:
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - KEYAI_CHAT_ENDPOINT: overrides chat.endpoint
//   - KEYAI_ACCOUNT_API: overrides account.api_base
//   - KEYAI_SETTLE_DELAY_MS: overrides input.settle_delay_ms
//   - KEYAI_LOG_LEVEL: overrides log.level
//   - KEYAI_USER_FILE: overrides account.user_file
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("KEYAI_CHAT_ENDPOINT"); endpoint != "" {
		c.Chat.Endpoint = endpoint
	}

	if api := os.Getenv("KEYAI_ACCOUNT_API"); api != "" {
		c.Account.APIBase = api
	}

	// Unparseable values are ignored rather than failing startup.
	if delay := os.Getenv("KEYAI_SETTLE_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil {
			c.Input.SettleDelayMs = ms
		}
	}

	if level := os.Getenv("KEYAI_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if file := os.Getenv("KEYAI_USER_FILE"); file != "" {
		c.Account.UserFile = file
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "chat.timeout_secs").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "input.settle_delay_ms").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct tree following a dotted key.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, prefix+name+".", keys)
			continue
		}
		*keys = append(*keys, prefix+name)
	}
}

// Clone returns a copy of the config. Config holds no reference types,
// so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns an indented JSON rendering for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// UserFilePath resolves account.user_file, defaulting to ~/.keyai/user.json.
func (c *Config) UserFilePath() (string, error) {
	if c.Account.UserFile != "" {
		return expandHome(c.Account.UserFile)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "user.json"), nil
}

// LogFilePath resolves log.file, defaulting to ~/.keyai/keyai.log.
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "keyai.log"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ChatClientConfig converts the [chat] section into a chat.Config.
func (c *Config) ChatClientConfig() chat.Config {
	return chat.Config{
		Endpoint:          c.Chat.Endpoint,
		Timeout:           time.Duration(c.Chat.TimeoutSecs) * time.Second,
		RegeneratePhrase:  c.Chat.RegeneratePhrase,
		MaxResponseBytes:  c.Chat.MaxResponseBytes,
		RequestsPerMinute: c.Chat.RequestsPerMinute,
		UserAgent:         c.Chat.UserAgent,
	}
}

// AccountTimeout returns account.timeout_secs as a duration.
func (c *Config) AccountTimeout() time.Duration {
	return time.Duration(c.Account.TimeoutSecs) * time.Second
}

// SettleDelay returns input.settle_delay_ms as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Input.SettleDelayMs) * time.Millisecond
}

// RepeatInterval returns input.repeat_interval_ms as a duration.
func (c *Config) RepeatInterval() time.Duration {
	return time.Duration(c.Input.RepeatIntervalMs) * time.Millisecond
}

// Animation returns overlay.animation_ms as a duration.
func (c *Config) Animation() time.Duration {
	return time.Duration(c.Overlay.AnimationMs) * time.Millisecond
}

// FocusDelay returns overlay.focus_delay_ms as a duration.
func (c *Config) FocusDelay() time.Duration {
	return time.Duration(c.Overlay.FocusDelayMs) * time.Millisecond
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
