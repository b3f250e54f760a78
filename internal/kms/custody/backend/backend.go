// Package backend selects the custody client implementation from configuration.
package backend

import (
	"context"

	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/awskms"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/gcpkms"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/software"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// New 根据 Provider 创建托管客户端
// 返回的客户端若实现 io.Closer，由调用方负责关闭
func New(ctx context.Context, cfg config.Custody) (custody.Client, error) {
	switch cfg.Provider {
	case config.ProviderAWS:
		client, err := awskms.NewFromConfig(ctx, awskms.Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			SessionToken:    cfg.AWS.SessionToken,
			Endpoint:        cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create aws kms custody client")
		}
		return client, nil

	case config.ProviderGCP:
		client, err := gcpkms.NewFromConfig(ctx, gcpkms.Config{
			CredentialsFile: cfg.GCP.CredentialsFile,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create gcp kms custody client")
		}
		return client, nil

	case config.ProviderSoftware:
		return newKeyring(cfg)

	default:
		return nil, errors.Errorf("unsupported custody provider %q", cfg.Provider)
	}
}

func newKeyring(cfg config.Custody) (*software.Keyring, error) {
	ring := software.NewKeyring()

	if cfg.Software.PrivateKeyHex == "" {
		log.Warn().
			Str("key_id", cfg.KeyID).
			Msg("No software private key configured, generating an ephemeral key")
		if err := ring.GenerateKeyWithID(cfg.KeyID); err != nil {
			return nil, errors.Wrap(err, "failed to generate software custody key")
		}
		return ring, nil
	}

	if err := ring.AddKeyHex(cfg.KeyID, cfg.Software.PrivateKeyHex); err != nil {
		return nil, errors.Wrap(err, "failed to load software custody key")
	}
	return ring, nil
}
