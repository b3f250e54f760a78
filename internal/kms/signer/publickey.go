package signer

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// CompressedPublicKeyLength 压缩点编码长度：1 字节奇偶位 + 32 字节 x 坐标
const CompressedPublicKeyLength = 33

// hederaDERPrefix is the ASN.1 header Hedera uses for ECDSA(secp256k1) public keys.
var hederaDERPrefix = []byte{
	0x30, 0x2d, 0x30, 0x07, 0x06, 0x05, 0x2b, 0x81, 0x04, 0x00, 0x0a, 0x03, 0x22, 0x00,
}

// PublicKey 账本协议使用的 secp256k1 公钥（压缩点形式）
type PublicKey struct {
	key *secp256k1.PublicKey
}

// DecodePublicKey 将托管服务返回的 SubjectPublicKeyInfo 解码为公钥
func DecodePublicKey(spkiDER []byte) (*PublicKey, error) {
	info, err := ParseSubjectPublicKeyInfo(spkiDER)
	if err != nil {
		return nil, err
	}
	return ParsePublicKey(info.Point)
}

// ParsePublicKey 解析 SEC1 编码（压缩或非压缩）的 secp256k1 点
func ParsePublicKey(point []byte) (*PublicKey, error) {
	key, err := secp256k1.ParsePubKey(point)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedKeyFormat, err)
	}
	return &PublicKey{key: key}, nil
}

// Bytes 返回 33 字节压缩点
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeCompressed()
}

// BytesUncompressed 返回 65 字节非压缩点
func (p *PublicKey) BytesUncompressed() []byte {
	return p.key.SerializeUncompressed()
}

// BytesDER 返回 Hedera 使用的 DER 编码
func (p *PublicKey) BytesDER() []byte {
	der := make([]byte, 0, len(hederaDERPrefix)+CompressedPublicKeyLength)
	der = append(der, hederaDERPrefix...)
	return append(der, p.Bytes()...)
}

func (p *PublicKey) String() string {
	return p.StringRaw()
}

// StringRaw 压缩点的十六进制
func (p *PublicKey) StringRaw() string {
	return hex.EncodeToString(p.Bytes())
}

// StringDER Hedera DER 编码的十六进制
func (p *PublicKey) StringDER() string {
	return hex.EncodeToString(p.BytesDER())
}

// EVMAddress 通过 Keccak256(pubKey[1:]) 生成 EVM 地址
func (p *PublicKey) EVMAddress() string {
	hash := crypto.Keccak256(p.BytesUncompressed()[1:])
	return fmt.Sprintf("0x%s", hex.EncodeToString(hash[12:]))
}

// ECDSA 返回标准库 ecdsa 公钥
func (p *PublicKey) ECDSA() *ecdsa.PublicKey {
	return p.key.ToECDSA()
}

// Equal reports whether both keys encode the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.key.IsEqual(other.key)
}

// VerifyDigest 校验 64 字节 r||s 签名
// 仅供调用方和测试使用，签名流程本身不做本地校验
func (p *PublicKey) VerifyDigest(digest, raw []byte) (bool, error) {
	if len(raw) != RawSignatureLength {
		return false, errors.Errorf("raw signature must be %d bytes, got %d", RawSignatureLength, len(raw))
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(raw[:ScalarLength]); overflow {
		return false, nil
	}
	if overflow := s.SetByteSlice(raw[ScalarLength:]); overflow {
		return false, nil
	}

	pub, err := btcec.ParsePubKey(p.Bytes())
	if err != nil {
		return false, errors.Wrap(err, "failed to parse compressed secp256k1 pubkey")
	}
	return btcecdsa.NewSignature(&r, &s).Verify(digest, pub), nil
}
