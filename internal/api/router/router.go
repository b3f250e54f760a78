package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/handlers"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/kashguard/go-kms-signer/internal/api/middleware"
	"github.com/kashguard/go-kms-signer/internal/util"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = HTTPErrorHandler

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Level: s.Config.Logger.RequestLevel,
	}))

	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:   s.Echo.Group(""),
		Health: s.Echo.Group("/health"),
		APIV1:  s.Echo.Group("/api/v1"),
	}

	handlers.AttachAllRoutes(s)
}

// HTTPErrorHandler 渲染 httperrors.HTTPError，其他错误按 500 处理
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *httperrors.HTTPError
	switch e := err.(type) {
	case *httperrors.HTTPError:
		httpErr = e
	case *echo.HTTPError:
		httpErr = httperrors.NewFromEcho(e)
	default:
		httpErr = httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.TypeGeneric, http.StatusText(http.StatusInternalServerError)).WithInternal(err)
	}

	l := util.LogFromEchoContext(c)
	if httpErr.Code >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", httpErr.Code).Msg("Request failed")
	} else {
		l.Debug().Err(err).Int("status", httpErr.Code).Msg("Request rejected")
	}

	var renderErr error
	if c.Request().Method == http.MethodHead {
		renderErr = c.NoContent(httpErr.Code)
	} else {
		renderErr = c.JSON(httpErr.Code, httpErr)
	}
	if renderErr != nil {
		log.Error().Err(renderErr).Msg("Failed to render error response")
	}
}
