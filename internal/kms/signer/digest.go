package signer

import (
	"crypto/sha256"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Digest 签名前对消息做的单向哈希
// 与托管服务内部使用的哈希无关，服务端以摘要模式接收结果
type Digest string

const (
	// Keccak256 is the Hedera ECDSA(secp256k1) convention.
	Keccak256 Digest = "keccak256"
	SHA256    Digest = "sha256"
	SHA3_256  Digest = "sha3-256"
)

// ParseDigest 解析配置中的摘要名称，空字符串返回默认的 Keccak256
func ParseDigest(name string) (Digest, error) {
	switch d := Digest(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return Keccak256, nil
	case Keccak256, SHA256, SHA3_256:
		return d, nil
	default:
		return "", errors.Errorf("unsupported digest %q", name)
	}
}

// Sum 计算 32 字节摘要
func (d Digest) Sum(message []byte) []byte {
	switch d {
	case SHA256:
		sum := sha256.Sum256(message)
		return sum[:]
	case SHA3_256:
		sum := sha3.Sum256(message)
		return sum[:]
	default:
		return crypto.Keccak256(message)
	}
}

func (d Digest) String() string {
	if d == "" {
		return string(Keccak256)
	}
	return string(d)
}
