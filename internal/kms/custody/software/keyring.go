// Package software 提供进程内的 secp256k1 托管实现，用于开发环境和测试。
// 对外行为与云 KMS 一致：公钥以 SubjectPublicKeyInfo 返回，签名以 DER 返回。
package software

import (
	"context"
	"crypto/sha256"
	encoding_asn1 "encoding/asn1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/google/uuid"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidPublicKeyECDSA      = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidNamedCurveSecp256k1 = encoding_asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// Keyring 按 key id 保存 secp256k1 私钥
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]*secp256k1.PrivateKey
}

var _ custody.Client = (*Keyring)(nil)

// NewKeyring 创建空的 Keyring
func NewKeyring() *Keyring {
	return &Keyring{
		keys: make(map[string]*secp256k1.PrivateKey),
	}
}

// AddKey 以指定 key id 导入私钥
func (k *Keyring) AddKey(keyID string, priv *secp256k1.PrivateKey) error {
	if keyID == "" {
		return errors.New("key id is required")
	}
	if priv == nil {
		return errors.New("private key is required")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.keys[keyID]; ok {
		return errors.Errorf("key %s already exists", keyID)
	}
	k.keys[keyID] = priv
	return nil
}

// AddKeyHex 导入十六进制编码的 32 字节私钥
func (k *Keyring) AddKeyHex(keyID, privateKeyHex string) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return errors.Wrap(err, "failed to decode private key hex")
	}
	if len(raw) != 32 {
		return errors.Errorf("private key must be 32 bytes, got %d", len(raw))
	}
	return k.AddKey(keyID, secp256k1.PrivKeyFromBytes(raw))
}

// GenerateKey 生成新私钥并返回其 key id
func (k *Keyring) GenerateKey() (string, error) {
	keyID := uuid.NewString()
	if err := k.GenerateKeyWithID(keyID); err != nil {
		return "", err
	}
	return keyID, nil
}

// GenerateKeyWithID 以指定 key id 生成新私钥
func (k *Keyring) GenerateKeyWithID(keyID string) error {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return errors.Wrap(err, "failed to generate secp256k1 key")
	}
	if err := k.AddKey(keyID, priv); err != nil {
		return err
	}
	log.Debug().Str("key_id", keyID).Msg("Generated software custody key")
	return nil
}

// GetPublicKey 返回 DER 编码的 SubjectPublicKeyInfo
func (k *Keyring) GetPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	priv, err := k.lookup(keyID)
	if err != nil {
		return nil, err
	}
	return marshalSubjectPublicKeyInfo(priv.PubKey())
}

// SignDigest 使用 RFC 6979 确定性 ECDSA 签名，返回 DER 编码
func (k *Keyring) SignDigest(ctx context.Context, req *custody.SignDigestRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := custody.ValidateSignDigestRequest(req); err != nil {
		return nil, err
	}
	if req.Algorithm != custody.AlgorithmECDSASHA256 {
		return nil, errors.Errorf("unsupported signing algorithm %q", req.Algorithm)
	}

	priv, err := k.lookup(req.KeyID)
	if err != nil {
		return nil, err
	}

	digest := req.Digest
	switch req.MessageType {
	case custody.MessageTypeDigest:
	case custody.MessageTypeRaw:
		sum := sha256.Sum256(req.Digest)
		digest = sum[:]
	default:
		return nil, errors.Errorf("unsupported message type %q", req.MessageType)
	}

	return ecdsa.Sign(priv, digest).Serialize(), nil
}

func (k *Keyring) lookup(keyID string) (*secp256k1.PrivateKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	priv, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", custody.ErrKeyNotFound, keyID)
	}
	return priv, nil
}

func marshalSubjectPublicKeyInfo(pub *secp256k1.PublicKey) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidPublicKeyECDSA)
			b.AddASN1ObjectIdentifier(oidNamedCurveSecp256k1)
		})
		b.AddASN1BitString(pub.SerializeUncompressed())
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal subject public key info")
	}
	return der, nil
}
