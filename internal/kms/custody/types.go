package custody

import (
	"context"

	"github.com/pkg/errors"
)

// DigestLength 托管服务接受的摘要长度（字节）
const DigestLength = 32

// MessageType 签名载荷类型
type MessageType string

const (
	// MessageTypeDigest 载荷已经是摘要，服务端不得再次哈希
	MessageTypeDigest MessageType = "DIGEST"
	// MessageTypeRaw 载荷为原始消息，由服务端哈希
	MessageTypeRaw MessageType = "RAW"
)

// Algorithm 托管服务侧的签名算法（曲线 + 哈希组合）
type Algorithm string

const (
	AlgorithmECDSASHA256 Algorithm = "ECDSA_SHA_256"
)

var (
	ErrKeyNotFound         = errors.New("custody: key not found")
	ErrUnavailable         = errors.New("custody: service unavailable")
	ErrInvalidDigestLength = errors.New("custody: invalid digest length")
)

// SignDigestRequest 摘要签名请求
type SignDigestRequest struct {
	KeyID       string
	Digest      []byte
	MessageType MessageType
	Algorithm   Algorithm
}

// Client 托管服务客户端接口
// 私钥始终留在托管服务内，本地只能拿到公钥和签名结果
type Client interface {
	// GetPublicKey 返回 DER 编码的 SubjectPublicKeyInfo
	GetPublicKey(ctx context.Context, keyID string) ([]byte, error)

	// SignDigest 对摘要签名，返回 DER 编码的 ECDSA 签名 (r, s)
	SignDigest(ctx context.Context, req *SignDigestRequest) ([]byte, error)
}

// ValidateSignDigestRequest checks the parts of a request every backend relies on.
func ValidateSignDigestRequest(req *SignDigestRequest) error {
	if req == nil {
		return errors.New("sign request is nil")
	}
	if req.KeyID == "" {
		return errors.New("key id is required")
	}
	if req.MessageType == MessageTypeDigest && len(req.Digest) != DigestLength {
		return errors.Wrapf(ErrInvalidDigestLength, "got %d bytes, want %d", len(req.Digest), DigestLength)
	}
	return nil
}
