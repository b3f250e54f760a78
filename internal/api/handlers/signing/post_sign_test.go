package signing_test

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/software"
	"github.com/kashguard/go-kms-signer/internal/test"
	"github.com/kashguard/go-kms-signer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCustody serves the real public key but replaces signing results.
type failingCustody struct {
	*software.Keyring
	signature []byte
	err       error
}

func (f *failingCustody) SignDigest(_ context.Context, _ *custody.SignDigestRequest) ([]byte, error) {
	return f.signature, f.err
}

func TestPostSign(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		message := []byte("hedera transaction body")
		payload := types.PostSignPayload{MessageHex: "0x" + hex.EncodeToString(message)}

		res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.PostSignResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, test.TestKeyID, response.KeyID)

		sig, err := hex.DecodeString(response.Signature)
		require.NoError(t, err)
		require.Len(t, sig, 64)

		ok, err := s.Signer.Verify(message, sig)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.NotEmpty(t, res.Header().Get("X-Request-Id"))
	})
}

func TestPostSign_BadRequest(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign", types.PostSignPayload{MessageHex: "xyz"}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeInvalidMessageHex, httpErr.Type)

		res = test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign", "not an object", nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeInvalidBody, httpErr.Type)
	})
}

func TestPostSign_CustodyErrors(t *testing.T) {
	tests := []struct {
		name      string
		signature []byte
		err       error
		errType   string
	}{
		{
			name:    "unavailable",
			err:     fmt.Errorf("%w: throttled", custody.ErrUnavailable),
			errType: httperrors.TypeSigningFailed,
		},
		{
			name:      "malformed signature",
			signature: []byte{0x30, 0x03, 0x02, 0x01},
			errType:   httperrors.TypeMalformedSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &failingCustody{Keyring: test.Keyring(t), signature: tt.signature, err: tt.err}

			test.WithTestServerWithCustody(t, test.Config(), client, func(s *api.Server) {
				res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign", types.PostSignPayload{MessageHex: "00"}, nil)
				require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

				var httpErr httperrors.HTTPError
				test.ParseResponseAndValidate(t, res, &httpErr)
				assert.Equal(t, tt.errType, httpErr.Type)
			})
		})
	}
}

func TestPostSignBatch(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		messages := [][]byte{[]byte("a"), []byte("b"), []byte("c"), {0x00}}
		payload := types.PostSignBatchPayload{}
		for _, m := range messages {
			payload.MessagesHex = append(payload.MessagesHex, hex.EncodeToString(m))
		}

		res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign/batch", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.PostSignBatchResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.Len(t, response.Signatures, len(messages))

		for i, sigHex := range response.Signatures {
			sig, err := hex.DecodeString(sigHex)
			require.NoError(t, err)

			ok, err := s.Signer.Verify(messages[i], sig)
			require.NoError(t, err)
			assert.True(t, ok, "signature %d", i)
		}
	})
}

func TestPostSignBatch_BadRequest(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign/batch", types.PostSignBatchPayload{}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		res = test.PerformRequest(t, s, http.MethodPost, "/api/v1/sign/batch", types.PostSignBatchPayload{MessagesHex: []string{"00", "zz"}}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeInvalidMessageHex, httpErr.Type)
		assert.Equal(t, "messages_hex[1]", httpErr.Detail)
	})
}
