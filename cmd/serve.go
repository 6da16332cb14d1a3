// File: cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/internal/observability"
	"github.com/xkilldash9x/guardian/internal/server"
)

func newServeCmd(provider oracleProvider) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.SetServerAddr(addr)
			}

			gw, cleanup, err := newGateway(ctx, cfg, provider)
			if err != nil {
				return fmt.Errorf("failed to initialize LLM client: %w", err)
			}
			defer cleanup()

			logger := observability.GetLogger()
			srv := server.NewServer(gw, cfg.Server(), cfg.Analysis(), logger)
			logger.Info("Guardian API starting", zap.String("addr", cfg.Server().Addr), zap.String("model", cfg.LLM().Model))

			// Run returns nil after a graceful shutdown triggered by ctx.
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
