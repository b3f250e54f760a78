package handlers

import (
	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/handlers/common"
	"github.com/kashguard/go-kms-signer/internal/api/handlers/signing"
	"github.com/labstack/echo/v4"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetHealthLiveRoute(s),
		common.GetHealthReadyRoute(s),
		common.GetMetricsRoute(s),
		signing.GetPublicKeyRoute(s),
		signing.PostSignRoute(s),
		signing.PostSignBatchRoute(s),
	}
}
