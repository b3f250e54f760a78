package signer

import (
	"context"

	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ResolvePublicKey 从托管服务获取公钥并解码为压缩点
// 不做重试，重试策略由调用方决定
func ResolvePublicKey(ctx context.Context, client custody.Client, keyID string) (*PublicKey, error) {
	if client == nil {
		return nil, &Error{Op: opResolve, KeyID: keyID, Kind: ErrServiceUnavailable, Err: errors.New("custody client is nil")}
	}
	if keyID == "" {
		return nil, &Error{Op: opResolve, Kind: ErrKeyNotFound, Err: errors.New("key id is empty")}
	}

	material, err := client.GetPublicKey(ctx, keyID)
	if err != nil {
		kind := ErrServiceUnavailable
		if errors.Is(err, custody.ErrKeyNotFound) {
			kind = ErrKeyNotFound
		}
		return nil, &Error{Op: opResolve, KeyID: keyID, Kind: kind, Err: err}
	}

	pub, err := DecodePublicKey(material)
	if err != nil {
		return nil, &Error{Op: opResolve, KeyID: keyID, Kind: ErrUnsupportedKeyFormat, Err: err}
	}
	return pub, nil
}

// Resolve 解析公钥并返回绑定到 keyID 的 RemoteSigner
// 解析失败时不会产生签名器
func Resolve(ctx context.Context, client custody.Client, keyID string, opts ...Option) (*RemoteSigner, error) {
	o := options{digest: Keccak256}
	for _, opt := range opts {
		opt(&o)
	}

	pub, err := ResolvePublicKey(ctx, client, keyID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("key_id", keyID).
		Str("public_key", pub.StringRaw()).
		Str("evm_address", pub.EVMAddress()).
		Str("digest", o.digest.String()).
		Msg("Resolved custody public key")

	return &RemoteSigner{
		client:    client,
		keyID:     keyID,
		publicKey: pub,
		digest:    o.digest,
	}, nil
}
