package signing

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/kashguard/go-kms-signer/internal/util"
	"github.com/labstack/echo/v4"
)

func PostSignBatchRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/sign/batch", postSignBatchHandler(s))
}

func postSignBatchHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if s.Signer == nil {
			return httperrors.ErrServiceUnavailableNotReady
		}

		var body types.PostSignBatchPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		messages := make([][]byte, len(body.MessagesHex))
		for i, m := range body.MessagesHex {
			message, err := decodeMessageHex(m)
			if err != nil {
				return httperrors.ErrBadRequestInvalidMessageHex.
					WithDetail(fmt.Sprintf("messages_hex[%d]", i)).
					WithInternal(err)
			}
			messages[i] = message
		}

		signatures, err := s.Signer.SignAll(ctx, messages, s.Config.Signer.BatchLimit)
		if err != nil {
			log.Error().Err(err).Str("key_id", s.Signer.KeyID()).Int("batch_size", len(messages)).Msg("Failed to sign batch")
			return httperrors.NewFromSignerError(err)
		}

		response := &types.PostSignBatchResponse{
			KeyID:      s.Signer.KeyID(),
			Signatures: make([]string, len(signatures)),
		}
		for i, sig := range signatures {
			response.Signatures[i] = hex.EncodeToString(sig)
		}

		return c.JSON(http.StatusOK, response)
	}
}
