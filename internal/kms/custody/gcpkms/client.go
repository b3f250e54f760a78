// Package gcpkms implements the custody client against Google Cloud KMS.
//
// Key identifiers are full CryptoKeyVersion resource names:
// projects/<p>/locations/<l>/keyRings/<r>/cryptoKeys/<k>/cryptoKeyVersions/<v>
package gcpkms

import (
	"context"
	"encoding/pem"
	"fmt"
	"hash/crc32"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// API 是 *kms.KeyManagementClient 中用到的子集
type API interface {
	GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest, opts ...gax.CallOption) (*kmspb.PublicKey, error)
	AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest, opts ...gax.CallOption) (*kmspb.AsymmetricSignResponse, error)
	Close() error
}

// Config GCP KMS 连接配置
type Config struct {
	// CredentialsFile is a service account JSON file; empty uses application default credentials.
	CredentialsFile string
}

// Client GCP KMS 托管客户端
type Client struct {
	api API
}

var _ custody.Client = (*Client)(nil)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// New 使用已有的 API 实现创建客户端
func New(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig 创建 KeyManagementClient（gRPC 连接）
func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	api, err := kms.NewKeyManagementClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cloud kms client")
	}
	return New(api), nil
}

// Close 关闭底层 gRPC 连接
func (c *Client) Close() error {
	return c.api.Close()
}

// GetPublicKey 获取公钥，PEM 解码后返回 DER 编码的 SubjectPublicKeyInfo
func (c *Client) GetPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	if keyID == "" {
		return nil, errors.New("key id is required")
	}

	resp, err := c.api.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: keyID})
	if err != nil {
		return nil, mapError(err)
	}

	if resp.GetPemCrc32C() != nil && int64(checksum([]byte(resp.GetPem()))) != resp.GetPemCrc32C().GetValue() {
		return nil, errors.Wrap(custody.ErrUnavailable, "public key response corrupted in transit")
	}

	block, _ := pem.Decode([]byte(resp.GetPem()))
	if block == nil {
		return nil, errors.New("public key response is not PEM encoded")
	}
	return block.Bytes, nil
}

// SignDigest 调用 AsymmetricSign，摘要通过 Digest_Sha256 字段传入，服务端不再哈希
func (c *Client) SignDigest(ctx context.Context, req *custody.SignDigestRequest) ([]byte, error) {
	if err := custody.ValidateSignDigestRequest(req); err != nil {
		return nil, err
	}
	if req.Algorithm != custody.AlgorithmECDSASHA256 {
		return nil, errors.Errorf("unsupported signing algorithm %q", req.Algorithm)
	}

	signReq := &kmspb.AsymmetricSignRequest{Name: req.KeyID}
	switch req.MessageType {
	case custody.MessageTypeDigest:
		signReq.Digest = &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{Sha256: req.Digest},
		}
		signReq.DigestCrc32C = wrapperspb.Int64(int64(checksum(req.Digest)))
	case custody.MessageTypeRaw:
		signReq.Data = req.Digest
		signReq.DataCrc32C = wrapperspb.Int64(int64(checksum(req.Digest)))
	default:
		return nil, errors.Errorf("unsupported message type %q", req.MessageType)
	}

	resp, err := c.api.AsymmetricSign(ctx, signReq)
	if err != nil {
		return nil, mapError(err)
	}

	if req.MessageType == custody.MessageTypeDigest && !resp.GetVerifiedDigestCrc32C() {
		return nil, errors.Wrap(custody.ErrUnavailable, "sign request digest corrupted in transit")
	}
	if req.MessageType == custody.MessageTypeRaw && !resp.GetVerifiedDataCrc32C() {
		return nil, errors.Wrap(custody.ErrUnavailable, "sign request data corrupted in transit")
	}
	if resp.GetSignatureCrc32C() != nil && int64(checksum(resp.GetSignature())) != resp.GetSignatureCrc32C().GetValue() {
		return nil, errors.Wrap(custody.ErrUnavailable, "sign response corrupted in transit")
	}
	return resp.GetSignature(), nil
}

func checksum(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", custody.ErrKeyNotFound, err)
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.ResourceExhausted,
		codes.Internal,
		codes.FailedPrecondition:
		return fmt.Errorf("%w: %w", custody.ErrUnavailable, err)
	default:
		return errors.Wrap(err, "cloud kms request failed")
	}
}
