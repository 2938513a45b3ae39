package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/deckforge-backend/internal/app"
	"github.com/yungbote/deckforge-backend/internal/platform/shutdown"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := shutdown.NotifyContext(context.Background())
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
