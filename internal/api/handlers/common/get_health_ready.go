package common

import (
	"net/http"
	"time"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/labstack/echo/v4"
)

func GetHealthReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Health.GET("/ready", getHealthReadyHandler(s))
}

// 就绪检查：公钥已在启动时解析即视为就绪
func getHealthReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "ready"
		httpStatus := http.StatusOK

		if !s.Ready() {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		return c.JSON(httpStatus, &types.HealthResponse{
			Status:    status,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
