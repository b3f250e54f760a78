package httperrors

import (
	"net/http"

	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/pkg/errors"
)

const (
	TypeGeneric            = "generic"
	TypeInvalidBody        = "INVALID_BODY"
	TypeInvalidMessageHex  = "INVALID_MESSAGE_HEX"
	TypeKeyNotFound        = "KEY_NOT_FOUND"
	TypeCustodyUnavailable = "CUSTODY_UNAVAILABLE"
	TypeSigningFailed      = "SIGNING_FAILED"
	TypeMalformedSignature = "MALFORMED_SIGNATURE"
	TypeNotReady           = "NOT_READY"
)

var (
	ErrBadRequestInvalidBody        = NewHTTPError(http.StatusBadRequest, TypeInvalidBody, "Request body is malformed.")
	ErrBadRequestInvalidMessageHex  = NewHTTPError(http.StatusBadRequest, TypeInvalidMessageHex, "message_hex must be hex encoded.")
	ErrNotFoundKey                  = NewHTTPError(http.StatusNotFound, TypeKeyNotFound, "Signing key not found.")
	ErrBadGatewayCustodyUnavailable = NewHTTPError(http.StatusBadGateway, TypeCustodyUnavailable, "Custody service is unavailable.")
	ErrBadGatewaySigningFailed      = NewHTTPError(http.StatusBadGateway, TypeSigningFailed, "Custody service failed to sign.")
	ErrBadGatewayMalformedSignature = NewHTTPError(http.StatusBadGateway, TypeMalformedSignature, "Custody service returned a malformed signature.")
	ErrServiceUnavailableNotReady   = NewHTTPError(http.StatusServiceUnavailable, TypeNotReady, "Signer is not ready.")
)

// NewFromSignerError 将签名器错误分类映射为 HTTP 错误
func NewFromSignerError(err error) *HTTPError {
	var e *HTTPError
	switch {
	case errors.Is(err, signer.ErrKeyNotFound):
		e = ErrNotFoundKey
	case errors.Is(err, signer.ErrMalformedSignature):
		e = ErrBadGatewayMalformedSignature
	case errors.Is(err, signer.ErrServiceUnavailable), errors.Is(err, signer.ErrUnsupportedKeyFormat):
		e = ErrBadGatewayCustodyUnavailable
	case errors.Is(err, signer.ErrSigningService):
		e = ErrBadGatewaySigningFailed
	default:
		return NewHTTPError(http.StatusInternalServerError, TypeGeneric, http.StatusText(http.StatusInternalServerError)).WithInternal(err)
	}
	return e.WithInternal(err)
}
