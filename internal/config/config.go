// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	LLM() LLMConfig
	Server() ServerConfig
	Analysis() AnalysisConfig

	SetLLMModel(model string)
	SetServerAddr(addr string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	LLMCfg      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	ServerCfg   ServerConfig   `mapstructure:"server" yaml:"server"`
	AnalysisCfg AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) LLM() LLMConfig           { return c.LLMCfg }
func (c *Config) Server() ServerConfig     { return c.ServerCfg }
func (c *Config) Analysis() AnalysisConfig { return c.AnalysisCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetLLMModel(model string)  { c.LLMCfg.Model = model }
func (c *Config) SetServerAddr(addr string) { c.ServerCfg.Addr = addr }

// LoggerConfig configures the zap logger and its optional rotating log file.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal color names.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LLMProvider names a hosted model backend.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
)

// LLMConfig configures the connection to the hosted model.
type LLMConfig struct {
	Provider LLMProvider `mapstructure:"provider" yaml:"provider"`
	Model    string      `mapstructure:"model" yaml:"model"`
	// APIKey is the only secret the application holds. It is never logged.
	APIKey string `mapstructure:"api_key" yaml:"-"`
	// Endpoint overrides the API base URL (proxies, tests).
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIVersion string        `mapstructure:"api_version" yaml:"api_version"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
}

// ServerConfig configures the HTTP and websocket front door.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// AnalysisConfig holds caller-facing defaults.
type AnalysisConfig struct {
	DefaultLanguage string `mapstructure:"default_language" yaml:"default_language"`
	DefaultChatMode string `mapstructure:"default_chat_mode" yaml:"default_chat_mode"`
	// MaxVideoFrames bounds how many frames a single video analysis may carry.
	MaxVideoFrames int `mapstructure:"max_video_frames" yaml:"max_video_frames"`
}

// NewDefaultConfig returns a configuration populated only from defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "guardian")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- LLM --
	v.SetDefault("llm.provider", string(ProviderGemini))
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "2m")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*", "https://*"})
	v.SetDefault("server.max_body_bytes", 64<<20)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "3m")
	v.SetDefault("server.shutdown_timeout", "10s")

	// -- Analysis --
	v.SetDefault("analysis.default_language", "English")
	v.SetDefault("analysis.default_chat_mode", "Detailed")
	v.SetDefault("analysis.max_video_frames", 60)
}

// BindEnv binds the secret and the commonly overridden keys to their
// environment variables. The API key accepts the names used by the upstream
// SDK as fallbacks.
func BindEnv(v *viper.Viper) error {
	bindings := [][]string{
		{"llm.api_key", "GUARDIAN_LLM_API_KEY", "API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		{"llm.model", "GUARDIAN_LLM_MODEL"},
		{"llm.endpoint", "GUARDIAN_LLM_ENDPOINT"},
		{"server.addr", "GUARDIAN_SERVER_ADDR"},
		{"logger.level", "GUARDIAN_LOGGER_LEVEL"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Missing files are not an error; variables already
// set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", p, err)
		}
		if err := godotenv.Load(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", expanded, err)
		}
	}
	return nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LoggerCfg.LogFile != "" {
		expanded, err := homedir.Expand(cfg.LoggerCfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("invalid logger.log_file: %w", err)
		}
		cfg.LoggerCfg.LogFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// The API key is checked separately by LLMConfig.ValidateCredentials, since
// commands such as `version` never talk to the model.
func (c *Config) Validate() error {
	if err := c.LLMCfg.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if err := c.ServerCfg.Validate(); err != nil {
		return fmt.Errorf("server configuration invalid: %w", err)
	}
	if err := c.AnalysisCfg.Validate(); err != nil {
		return fmt.Errorf("analysis configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the LLM settings other than the credential.
func (l *LLMConfig) Validate() error {
	if l.Provider != ProviderGemini {
		return fmt.Errorf("llm.provider %q is not supported. Supported: [%s]", l.Provider, ProviderGemini)
	}
	if l.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if l.APITimeout < 0 {
		return fmt.Errorf("llm.api_timeout must not be negative")
	}
	return nil
}

// ValidateCredentials checks that an API key has been supplied.
func (l *LLMConfig) ValidateCredentials() error {
	if l.APIKey == "" {
		return fmt.Errorf("llm.api_key is required. Set GUARDIAN_LLM_API_KEY, API_KEY or GEMINI_API_KEY")
	}
	return nil
}

// Validate checks the server settings.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be a positive integer")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the analysis defaults.
func (a *AnalysisConfig) Validate() error {
	if a.DefaultLanguage == "" {
		return fmt.Errorf("analysis.default_language is required")
	}
	switch a.DefaultChatMode {
	case "Detailed", "Concise":
	default:
		return fmt.Errorf("analysis.default_chat_mode must be Detailed or Concise, got %q", a.DefaultChatMode)
	}
	if a.MaxVideoFrames <= 0 {
		return fmt.Errorf("analysis.max_video_frames must be a positive integer")
	}
	return nil
}
