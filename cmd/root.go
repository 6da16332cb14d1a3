// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/internal/config"
	"github.com/xkilldash9x/guardian/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// NewRootCommand builds a fresh command tree backed by the production oracle.
func NewRootCommand() *cobra.Command {
	return newRootCmd(NewOracleProvider())
}

func newRootCmd(provider oracleProvider) *cobra.Command {
	var (
		cfgFile string
		envFile string
		model   string
	)

	rootCmd := &cobra.Command{
		Use:     "guardian",
		Short:   "Guardian checks URLs, images, videos and PDFs for threats and manipulation.",
		Version: Version,
		// Execute logs the returned error.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}

			v := viper.New()
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "guardian"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			if model != "" {
				cfg.SetLLMModel(model)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting guardian", zap.String("version", Version), zap.String("model", cfg.LLM().Model))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file holding secrets such as GUARDIAN_LLM_API_KEY")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "override the configured model name")
	rootCmd.SetVersionTemplate(`{{printf "guardian version %s\n" .Version}}`)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd(provider))
	rootCmd.AddCommand(newChatCmd(provider))
	rootCmd.AddCommand(newServeCmd(provider))
	return rootCmd
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	observability.Sync()
	return err
}

// initializeConfig reads in a config file and ENV variables if set.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return nil
}

// getConfigFromContext retrieves the configuration stored by the root pre-run.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}
