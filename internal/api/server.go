package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type Router struct {
	Routes []*echo.Route
	Root   *echo.Group
	Health *echo.Group
	APIV1  *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config  config.Server
	Custody custody.Client
	Signer  *signer.RemoteSigner
	Metrics *prometheus.Registry
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	client custody.Client,
	remoteSigner *signer.RemoteSigner,
	metrics *prometheus.Registry,
) *Server {
	return &Server{
		Config:  cfg,
		Custody: client,
		Signer:  remoteSigner,
		Metrics: metrics,
	}
}

// Ready 公钥已解析且路由已初始化
func (s *Server) Ready() bool {
	if s.Echo == nil || s.Router == nil {
		log.Debug().Msg("Server router is not initialized")
		return false
	}
	if s.Custody == nil || s.Signer == nil {
		log.Debug().Msg("Server signer is not resolved")
		return false
	}
	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if closer, ok := s.Custody.(io.Closer); ok {
		log.Debug().Msg("Closing custody client")

		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close custody client")
			errs = append(errs, err)
		}
	}

	return errs
}
