package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/api/router"
	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/software"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const (
	// TestKeyID is the key id registered in the software keyring of every test server.
	TestKeyID = "test-signing-key"
	// TestPrivateKeyHex is the secp256k1 scalar 1, its public key is the generator point.
	TestPrivateKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"
	// TestEVMAddress is the address derived from TestPrivateKeyHex.
	TestEVMAddress = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
)

// Config 返回使用进程内密钥环的测试配置
func Config() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Custody.Provider = config.ProviderSoftware
	cfg.Custody.KeyID = TestKeyID
	cfg.Custody.Software.PrivateKeyHex = TestPrivateKeyHex
	cfg.Signer.Digest = "keccak256"
	cfg.Signer.BatchLimit = 4
	cfg.Logger.PrettyPrintConsole = false
	return cfg
}

// Keyring 返回只包含测试私钥的密钥环
func Keyring(t *testing.T) *software.Keyring {
	t.Helper()

	ring := software.NewKeyring()
	require.NoError(t, ring.AddKeyHex(TestKeyID, TestPrivateKeyHex))
	return ring
}

// WithTestServer returns a fully configured server backed by the software keyring.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, Config(), closure)
}

// WithTestServerConfigurable returns a fully configured server, allowing for configuration using the provided server config.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerWithCustody(t, cfg, Keyring(t), closure)
}

// WithTestServerWithCustody returns a server using the given custody client, e.g. a mock.
func WithTestServerWithCustody(t *testing.T, cfg config.Server, client custody.Client, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServerWithCustody(cfg, client)
	require.NoError(t, err, "Failed to init server")

	router.Init(s)

	closure(s)

	// echo is never started in tests, Shutdown only closes the custody client
	s.Echo = nil
	errs := s.Shutdown(context.Background())
	require.Empty(t, errs, "Failed to shutdown server")
}

// PerformRequest performs a request against the server's echo instance and records the response.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "Failed to serialize request body")
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes the JSON response body into v.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Result().Body).Decode(v), "Failed to parse response body")
}
