// Package signer exposes a key held by a remote custody service as a local
// ECDSA(secp256k1) signer producing 64-byte r||s signatures.
package signer

import (
	"context"

	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SignFunc 账本客户端库消费的签名函数形态：任意消息 -> 64 字节 r||s
type SignFunc func(ctx context.Context, message []byte) ([]byte, error)

// Option 配置 RemoteSigner
type Option func(*options)

type options struct {
	digest Digest
}

// WithDigest 设置签名前使用的哈希，默认 Keccak256
func WithDigest(d Digest) Option {
	return func(o *options) {
		if d != "" {
			o.digest = d
		}
	}
}

// RemoteSigner 绑定到单个 key id 的远程签名器
// 只能通过 Resolve 构造；无可变状态，可并发使用
type RemoteSigner struct {
	client    custody.Client
	keyID     string
	publicKey *PublicKey
	digest    Digest
}

// KeyID 返回绑定的 key id
func (s *RemoteSigner) KeyID() string {
	return s.keyID
}

// PublicKey 返回解析时缓存的公钥
func (s *RemoteSigner) PublicKey() *PublicKey {
	return s.publicKey
}

// Digest 返回签名前使用的哈希
func (s *RemoteSigner) Digest() Digest {
	return s.digest
}

// SignFunc 返回可交给账本客户端的签名函数
func (s *RemoteSigner) SignFunc() SignFunc {
	return s.Sign
}

// Sign 对消息签名：本地哈希 -> 托管服务摘要签名 -> DER 转 64 字节 r||s
// 不做 low-s 规范化，也不做本地校验
func (s *RemoteSigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if s == nil || s.client == nil || s.publicKey == nil {
		return nil, &Error{Op: opSign, Kind: ErrSigningService, Err: errors.New("signer is not resolved")}
	}

	digest := s.digest.Sum(message)

	der, err := s.client.SignDigest(ctx, &custody.SignDigestRequest{
		KeyID:       s.keyID,
		Digest:      digest,
		MessageType: custody.MessageTypeDigest,
		Algorithm:   custody.AlgorithmECDSASHA256,
	})
	if err != nil {
		return nil, &Error{Op: opSign, KeyID: s.keyID, Kind: ErrSigningService, Err: err}
	}

	raw, err := DERToRaw(der)
	if err != nil {
		log.Warn().
			Err(err).
			Str("key_id", s.keyID).
			Int("signature_length", len(der)).
			Msg("Custody service returned a malformed signature")
		return nil, &Error{Op: opSign, KeyID: s.keyID, Kind: ErrMalformedSignature, Err: err}
	}

	return raw, nil
}

// Verify 使用同一哈希在本地校验 r||s 签名
func (s *RemoteSigner) Verify(message, raw []byte) (bool, error) {
	return s.publicKey.VerifyDigest(s.digest.Sum(message), raw)
}
