// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/config"
)

// NewClient is a factory function that creates an Oracle based on the configuration.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.Oracle, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, nil, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s]", cfg.Provider, config.ProviderGemini)
	}
}
