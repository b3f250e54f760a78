package common

import (
	"net/http"
	"time"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/labstack/echo/v4"
)

var started = time.Now()

func GetHealthLiveRoute(s *api.Server) *echo.Route {
	return s.Router.Health.GET("/live", getHealthLiveHandler(s))
}

// 存活检查：能到达这里说明进程存活，不访问托管服务
func getHealthLiveHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, &types.HealthResponse{
			Status:    "alive",
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(started).String(),
		})
	}
}
