package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/router"
	"github.com/kashguard/go-kms-signer/internal/util/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP signing sidecar",
		Long: `Resolves the configured key once and serves /api/v1/public-key,
/api/v1/sign, /api/v1/sign/batch, /health/* and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
				router.Init(s)

				errCh := make(chan error, 1)
				go func() {
					log.Info().
						Str("listen_address", s.Config.Echo.ListenAddress).
						Str("key_id", s.Signer.KeyID()).
						Msg("Starting server")
					errCh <- s.Start()
				}()

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
					log.Info().Msg("Received shutdown signal")
					return nil
				}
			})
		},
	}
}
