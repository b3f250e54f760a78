package signing

import (
	"net/http"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/labstack/echo/v4"
)

func GetPublicKeyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/public-key", getPublicKeyHandler(s))
}

// 返回启动时解析的公钥，不再访问托管服务
func getPublicKeyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Signer == nil {
			return httperrors.ErrServiceUnavailableNotReady
		}

		pub := s.Signer.PublicKey()
		return c.JSON(http.StatusOK, &types.GetPublicKeyResponse{
			KeyID:        s.Signer.KeyID(),
			PublicKey:    pub.StringRaw(),
			PublicKeyDER: pub.StringDER(),
			EVMAddress:   pub.EVMAddress(),
			Digest:       s.Signer.Digest().String(),
		})
	}
}
