package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Custody.Provider = config.ProviderSoftware
	cfg.Custody.KeyID = "local"
	return cfg
}

func TestDefaultServiceConfigFromEnv(t *testing.T) {
	t.Setenv("KMS_PROVIDER", "")
	t.Setenv("SIGNER_DIGEST", "")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, zerolog.InfoLevel, cfg.Logger.Level)
	assert.Equal(t, ":8080", cfg.Echo.ListenAddress)
	assert.Equal(t, 8, cfg.Signer.BatchLimit)
}

func TestDefaultServiceConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("KMS_PROVIDER", "GCP")
	t.Setenv("KMS_KEY_ID", "")
	t.Setenv("AWS_KMS_KEY_ID", "")
	t.Setenv("GCP_KMS_KEY_NAME", "projects/p/locations/global/keyRings/r/cryptoKeys/k/cryptoKeyVersions/1")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	t.Setenv("SERVER_LOGGER_LEVEL", "debug")
	t.Setenv("SIGNER_DIGEST", "sha256")
	t.Setenv("SIGNER_BATCH_LIMIT", "3")
	t.Setenv("SERVER_ECHO_LISTEN_ADDRESS", "127.0.0.1:9000")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, config.ProviderGCP, cfg.Custody.Provider)
	assert.Equal(t, "projects/p/locations/global/keyRings/r/cryptoKeys/k/cryptoKeyVersions/1", cfg.Custody.KeyID)
	assert.Equal(t, "/secrets/sa.json", cfg.Custody.GCP.CredentialsFile)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.Level)
	assert.Equal(t, "sha256", cfg.Signer.Digest)
	assert.Equal(t, 3, cfg.Signer.BatchLimit)
	assert.Equal(t, "127.0.0.1:9000", cfg.Echo.ListenAddress)
	require.NoError(t, cfg.Validate())
}

func TestDefaultServiceConfigFromEnv_AWSNames(t *testing.T) {
	t.Setenv("KMS_PROVIDER", "aws")
	t.Setenv("KMS_KEY_ID", "")
	t.Setenv("AWS_KMS_KEY_ID", "alias/operator")
	t.Setenv("AWS_KMS_REGION", "eu-central-1")
	t.Setenv("AWS_KMS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_KMS_SECRET_ACCESS_KEY", "secret")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, "alias/operator", cfg.Custody.KeyID)
	assert.Equal(t, "eu-central-1", cfg.Custody.AWS.Region)
	assert.Equal(t, "AKIAEXAMPLE", cfg.Custody.AWS.AccessKeyID)
	assert.Equal(t, "secret", cfg.Custody.AWS.SecretAccessKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("KMS_PROVIDER", "")
	t.Setenv("KMS_KEY_ID", "")
	t.Setenv("SIGNER_DIGEST", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
custody:
  provider: software
  key_id: dev-key
  software:
    private_key_hex: "0000000000000000000000000000000000000000000000000000000000000001"
signer:
  digest: sha3-256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	expected := config.Custody{
		Provider: config.ProviderSoftware,
		KeyID:    "dev-key",
		AWS:      cfg.Custody.AWS,
		GCP:      cfg.Custody.GCP,
		Software: config.Software{
			PrivateKeyHex: "0000000000000000000000000000000000000000000000000000000000000001",
		},
	}
	if diff := cmp.Diff(expected, cfg.Custody); diff != "" {
		t.Errorf("custody config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "sha3-256", cfg.Signer.Digest)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFileEnvWins(t *testing.T) {
	t.Setenv("KMS_KEY_ID", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("custody:\n  key_id: from-file\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Custody.KeyID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "KMS_SIGNER_DOTENV_TEST_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Server)
	}{
		{"unknown provider", func(cfg *config.Server) { cfg.Custody.Provider = "vault" }},
		{"missing key id", func(cfg *config.Server) { cfg.Custody.KeyID = "" }},
		{"unknown digest", func(cfg *config.Server) { cfg.Signer.Digest = "md5" }},
		{"negative batch limit", func(cfg *config.Server) { cfg.Signer.BatchLimit = -1 }},
		{"aws without region", func(cfg *config.Server) {
			cfg.Custody.Provider = config.ProviderAWS
			cfg.Custody.AWS.Region = ""
		}},
		{"aws partial credentials", func(cfg *config.Server) {
			cfg.Custody.Provider = config.ProviderAWS
			cfg.Custody.AWS.Region = "us-east-1"
			cfg.Custody.AWS.AccessKeyID = "AKIAEXAMPLE"
			cfg.Custody.AWS.SecretAccessKey = ""
		}},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
