package signing

import (
	"encoding/hex"
	"net/http"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/kashguard/go-kms-signer/internal/util"
	"github.com/labstack/echo/v4"
)

func PostSignRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/sign", postSignHandler(s))
}

func postSignHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if s.Signer == nil {
			return httperrors.ErrServiceUnavailableNotReady
		}

		var body types.PostSignPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		message, err := decodeMessageHex(body.MessageHex)
		if err != nil {
			return httperrors.ErrBadRequestInvalidMessageHex.WithInternal(err)
		}

		signature, err := s.Signer.Sign(ctx, message)
		if err != nil {
			log.Error().Err(err).Str("key_id", s.Signer.KeyID()).Msg("Failed to sign")
			return httperrors.NewFromSignerError(err)
		}

		return c.JSON(http.StatusOK, &types.PostSignResponse{
			KeyID:     s.Signer.KeyID(),
			Signature: hex.EncodeToString(signature),
		})
	}
}
