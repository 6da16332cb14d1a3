// File: internal/config/config_test.go
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "guardian", cfg.Logger().ServiceName)
	assert.Equal(t, ProviderGemini, cfg.LLM().Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM().Model)
	assert.Equal(t, 2*time.Minute, cfg.LLM().APITimeout)
	assert.Empty(t, cfg.LLM().APIKey)
	assert.Equal(t, ":8080", cfg.Server().Addr)
	assert.Equal(t, int64(64<<20), cfg.Server().MaxBodyBytes)
	assert.Equal(t, "English", cfg.Analysis().DefaultLanguage)
	assert.Equal(t, "Detailed", cfg.Analysis().DefaultChatMode)
	assert.Equal(t, 60, cfg.Analysis().MaxVideoFrames)
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetLLMModel("gemini-2.5-pro")
	cfg.SetServerAddr("127.0.0.1:9000")
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM().Model)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server().Addr)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Defaults are valid", func(t *testing.T) {
		cfg := NewDefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("LLM Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.LLMCfg.Provider = "openai"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `llm.provider "openai" is not supported`)

		cfg = NewDefaultConfig()
		cfg.LLMCfg.Model = ""
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.model is required")

		cfg = NewDefaultConfig()
		cfg.LLMCfg.APITimeout = -time.Second
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.api_timeout must not be negative")
	})

	t.Run("Credentials Validation", func(t *testing.T) {
		llm := NewDefaultConfig().LLM()
		err := llm.ValidateCredentials()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.api_key is required")

		llm.APIKey = "k"
		assert.NoError(t, llm.ValidateCredentials())
	})

	t.Run("Server Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.ServerCfg.Addr = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.addr is required")

		cfg = NewDefaultConfig()
		cfg.ServerCfg.MaxBodyBytes = 0
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.max_body_bytes must be a positive integer")
	})

	t.Run("Analysis Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.AnalysisCfg.DefaultChatMode = "Verbose"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis.default_chat_mode must be Detailed or Concise")

		cfg = NewDefaultConfig()
		cfg.AnalysisCfg.MaxVideoFrames = 0
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis.max_video_frames must be a positive integer")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
llm:
  model: "gemini-2.5-pro"
  api_timeout: 45s
server:
  addr: "127.0.0.1:9999"
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", cfg.LLM().Model)
		assert.Equal(t, 45*time.Second, cfg.LLM().APITimeout)
		assert.Equal(t, "127.0.0.1:9999", cfg.Server().Addr)
		// A default survives alongside the file values.
		assert.Equal(t, "info", cfg.Logger().Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("analysis.max_video_frames", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("llm:\n  model: from-file\n")))

		t.Setenv("GUARDIAN_LLM_API_KEY", "env-secret")
		t.Setenv("GUARDIAN_LLM_MODEL", "from-env")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "env-secret", cfg.LLM().APIKey)
		// The environment overrides the config file.
		assert.Equal(t, "from-env", cfg.LLM().Model)
	})

	t.Run("Fallback API key variable", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		t.Setenv("GUARDIAN_LLM_API_KEY", "")
		t.Setenv("API_KEY", "plain-api-key")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "plain-api-key", cfg.LLM().APIKey)
	})

	t.Run("Log file home expansion", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("logger.log_file", "~/guardian.log")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.NotContains(t, cfg.Logger().LogFile, "~")
		assert.True(t, filepath.IsAbs(cfg.Logger().LogFile))
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GUARDIAN_DOTENV_PROBE=from-dotenv\n"), 0o600))
	t.Setenv("GUARDIAN_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("GUARDIAN_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("GUARDIAN_DOTENV_PROBE"))

	// A missing file is silently skipped.
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/guardian.log
server:
  allowed_origins: ["https://example.com"]
  shutdown_timeout: 5s
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/guardian.log", cfg.Logger().LogFile)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server().AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server().ShutdownTimeout)
}
