// File: cmd/provider.go
package cmd

import (
	"context"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/config"
	"github.com/xkilldash9x/guardian/internal/gateway"
	"github.com/xkilldash9x/guardian/internal/llmclient"
	"github.com/xkilldash9x/guardian/internal/observability"
)

// oracleProvider creates the model client. Tests inject a mock oracle here
// instead of reaching the network.
type oracleProvider interface {
	Create(ctx context.Context, cfg config.Interface) (schemas.Oracle, error)
}

type defaultOracleProvider struct{}

// NewOracleProvider returns the provider that talks to the configured LLM.
func NewOracleProvider() oracleProvider {
	return &defaultOracleProvider{}
}

func (p *defaultOracleProvider) Create(ctx context.Context, cfg config.Interface) (schemas.Oracle, error) {
	return llmclient.NewClient(ctx, cfg.LLM(), observability.GetLogger())
}

// newGateway wires an oracle into a gateway. The returned cleanup closes the oracle.
func newGateway(ctx context.Context, cfg config.Interface, provider oracleProvider) (*gateway.Gateway, func(), error) {
	oracle, err := provider.Create(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	gw := gateway.New(oracle,
		gateway.WithModel(cfg.LLM().Model),
		gateway.WithLogger(observability.GetLogger()),
		gateway.WithMaxVideoFrames(cfg.Analysis().MaxVideoFrames),
	)
	cleanup := func() { _ = oracle.Close() }
	return gw, cleanup, nil
}
