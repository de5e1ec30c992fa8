package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server     ServerConfig     `toml:"server"`     // HTTP server settings
	Logging    LoggingConfig    `toml:"logging"`    // Application logging settings
	Storage    StorageConfig    `toml:"storage"`    // Data persistence settings
	ElevenLabs ElevenLabsConfig `toml:"elevenlabs"` // Conversational voice agent provider settings
	Functions  FunctionsConfig  `toml:"functions"`  // Backend function endpoint used by the call client
	Call       CallConfig       `toml:"call"`       // Voice call controller settings
	RateLimit  RateLimitConfig  `toml:"rate_limit"` // Token endpoint rate limiting
	Catalog    CatalogConfig    `toml:"catalog"`    // College catalog settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on (useful for multiple interfaces)
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve static files from (empty disables static serving)
	AdminToken         string   `toml:"admin_token"`           // Bearer token for /api/v1/admin (falls back to COUNSELOR_ADMIN_TOKEN; empty disables admin routes)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`        // Log level: "debug", "info", "warn", or "error"
	Format     string `toml:"format"`       // Log format: "json" (structured) or "console" (human-readable)
	File       string `toml:"file"`         // Optional log file path; rotated with lumberjack when set
	MaxSizeMB  int    `toml:"max_size_mb"`  // Rotate the log file after it reaches this size
	MaxBackups int    `toml:"max_backups"`  // Number of rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // Days to retain rotated files
	Compress   bool   `toml:"compress"`     // Gzip rotated files
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"` // Path of the SQLite database holding the catalog and token audit
}

// ElevenLabsConfig contains the voice agent provider settings
type ElevenLabsConfig struct {
	APIKey                string `toml:"api_key"`                 // Provider API key (falls back to ELEVENLABS_API_KEY)
	AgentID               string `toml:"agent_id"`                // Conversational agent identifier (falls back to ELEVENLABS_AGENT_ID)
	APIBaseURL            string `toml:"api_base_url"`            // Provider REST base URL. Defaults to https://api.elevenlabs.io
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // Timeout for the signed URL request
}

// FunctionsConfig describes where the call client fetches its session credential
type FunctionsConfig struct {
	BaseURL        string `toml:"base_url"`        // Base URL of the functions host (e.g., http://localhost:8080)
	AnonKey        string `toml:"anon_key"`        // Public key sent as bearer token (falls back to COUNSELOR_FUNCTIONS_KEY)
	TimeoutSeconds int    `toml:"timeout_seconds"` // Timeout for a single function invocation
}

// CallConfig contains settings for the voice call controller
type CallConfig struct {
	TranscriptLimit          int               `toml:"transcript_limit"`            // Number of transcript lines retained (default 5)
	UnmountDelayMs           int               `toml:"unmount_delay_ms"`            // Delay between closing the widget and tearing it down
	TickIntervalMs           int               `toml:"tick_interval_ms"`            // Call duration tick interval
	EndSessionTimeoutSeconds int               `toml:"end_session_timeout_seconds"` // Upper bound on waiting for the remote session to end
	Microphone               MicrophoneConfig  `toml:"microphone"`                  // Capture constraints requested from the microphone
	AudioOutput              AudioOutputConfig `toml:"audio_output"`                // Playback device settings
}

// MicrophoneConfig holds the capture constraints used for the permission check
type MicrophoneConfig struct {
	SampleRate       int  `toml:"sample_rate"`       // Requested sample rate in Hz (16000)
	EchoCancellation bool `toml:"echo_cancellation"` // Request echo cancellation
	NoiseSuppression bool `toml:"noise_suppression"` // Request noise suppression
	AutoGainControl  bool `toml:"auto_gain_control"` // Request automatic gain control
}

// AudioOutputConfig holds playback settings for agent audio
type AudioOutputConfig struct {
	SampleRate   int `toml:"sample_rate"`   // Playback sample rate in Hz (agent output is pcm_16000 by default)
	ChannelCount int `toml:"channel_count"` // Number of playback channels
}

// RateLimitConfig limits how often a single client can mint credentials
type RateLimitConfig struct {
	TokenRequestsPerMinute int `toml:"token_requests_per_minute"` // Sustained rate per client IP (0 disables limiting)
	TokenBurst             int `toml:"token_burst"`               // Burst size per client IP
}

// CatalogConfig contains settings for the college catalog
type CatalogConfig struct {
	CompareLimit int  `toml:"compare_limit"` // Maximum colleges in a single comparison (default 4)
	SeedOnStart  bool `toml:"seed_on_start"` // Seed the built-in catalog when the database is empty
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,
		"configs/config.toml",
		"config.toml",
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// applyEnv fills secrets from the environment when the file leaves them empty
func (c *Config) applyEnv() {
	if c.ElevenLabs.APIKey == "" {
		c.ElevenLabs.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if c.ElevenLabs.AgentID == "" {
		c.ElevenLabs.AgentID = os.Getenv("ELEVENLABS_AGENT_ID")
	}
	if c.Functions.AnonKey == "" {
		c.Functions.AnonKey = os.Getenv("COUNSELOR_FUNCTIONS_KEY")
	}
	if c.Server.AdminToken == "" {
		c.Server.AdminToken = os.Getenv("COUNSELOR_ADMIN_TOKEN")
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}
	if c.Server.StaticFilesDir != "" {
		if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
			return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
		}
	}

	// Validate logging config
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 50
	}

	// Validate storage config
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required")
	}

	if err := c.ValidateElevenLabs(); err != nil {
		return err
	}
	if err := c.ValidateFunctions(); err != nil {
		return err
	}
	if err := c.ValidateCall(); err != nil {
		return err
	}

	if c.RateLimit.TokenRequestsPerMinute < 0 {
		return fmt.Errorf("token_requests_per_minute must be non-negative: %d", c.RateLimit.TokenRequestsPerMinute)
	}
	if c.RateLimit.TokenRequestsPerMinute > 0 && c.RateLimit.TokenBurst <= 0 {
		c.RateLimit.TokenBurst = 1
	}

	if c.Catalog.CompareLimit == 0 {
		c.Catalog.CompareLimit = 4
	}
	if c.Catalog.CompareLimit < 2 {
		return fmt.Errorf("compare_limit must be at least 2: %d", c.Catalog.CompareLimit)
	}

	return nil
}

// ValidateElevenLabs validates the provider settings used by the token function
func (c *Config) ValidateElevenLabs() error {
	if c.ElevenLabs.APIBaseURL == "" {
		c.ElevenLabs.APIBaseURL = "https://api.elevenlabs.io"
	}
	c.ElevenLabs.APIBaseURL = strings.TrimRight(c.ElevenLabs.APIBaseURL, "/")
	if c.ElevenLabs.RequestTimeoutSeconds == 0 {
		c.ElevenLabs.RequestTimeoutSeconds = 10
	}
	if c.ElevenLabs.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid elevenlabs request_timeout_seconds: %d", c.ElevenLabs.RequestTimeoutSeconds)
	}
	if c.ElevenLabs.APIKey == "" {
		return fmt.Errorf("elevenlabs api_key is required (or set ELEVENLABS_API_KEY)")
	}
	if c.ElevenLabs.AgentID == "" {
		return fmt.Errorf("elevenlabs agent_id is required (or set ELEVENLABS_AGENT_ID)")
	}
	return nil
}

// ValidateFunctions validates the functions client settings
func (c *Config) ValidateFunctions() error {
	if c.Functions.BaseURL == "" {
		c.Functions.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", c.Server.Port)
	}
	c.Functions.BaseURL = strings.TrimRight(c.Functions.BaseURL, "/")
	if c.Functions.TimeoutSeconds == 0 {
		c.Functions.TimeoutSeconds = 15
	}
	if c.Functions.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid functions timeout_seconds: %d", c.Functions.TimeoutSeconds)
	}
	return nil
}

// ValidateCall fills call controller defaults and checks ranges
func (c *Config) ValidateCall() error {
	call := &c.Call
	if call.TranscriptLimit == 0 {
		call.TranscriptLimit = 5
	}
	if call.TranscriptLimit < 1 {
		return fmt.Errorf("transcript_limit must be positive: %d", call.TranscriptLimit)
	}
	if call.UnmountDelayMs == 0 {
		call.UnmountDelayMs = 150
	}
	if call.UnmountDelayMs < 0 {
		return fmt.Errorf("unmount_delay_ms must be non-negative: %d", call.UnmountDelayMs)
	}
	if call.TickIntervalMs == 0 {
		call.TickIntervalMs = 1000
	}
	if call.TickIntervalMs < 0 {
		return fmt.Errorf("tick_interval_ms must be positive: %d", call.TickIntervalMs)
	}
	if call.EndSessionTimeoutSeconds == 0 {
		call.EndSessionTimeoutSeconds = 5
	}
	if call.Microphone.SampleRate == 0 {
		call.Microphone.SampleRate = 16000
		call.Microphone.EchoCancellation = true
		call.Microphone.NoiseSuppression = true
		call.Microphone.AutoGainControl = true
	}
	if call.AudioOutput.SampleRate == 0 {
		call.AudioOutput.SampleRate = 16000
	}
	if call.AudioOutput.ChannelCount == 0 {
		call.AudioOutput.ChannelCount = 1
	}
	if call.AudioOutput.ChannelCount > 2 {
		return fmt.Errorf("audio_output channel_count must be 1 or 2: %d", call.AudioOutput.ChannelCount)
	}
	return nil
}

// ValidateClient validates only what the standalone call client needs.
// The client never holds the provider API key.
func (c *Config) ValidateClient() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if err := c.ValidateFunctions(); err != nil {
		return err
	}
	return c.ValidateCall()
}

// UnmountDelay returns the widget teardown delay
func (c CallConfig) UnmountDelay() time.Duration {
	return time.Duration(c.UnmountDelayMs) * time.Millisecond
}

// TickInterval returns the duration counter interval
func (c CallConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// EndSessionTimeout returns the upper bound for ending the remote session
func (c CallConfig) EndSessionTimeout() time.Duration {
	return time.Duration(c.EndSessionTimeoutSeconds) * time.Second
}
