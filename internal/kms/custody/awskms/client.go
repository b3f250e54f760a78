// Package awskms implements the custody client against AWS Key Management Service.
package awskms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
)

// API 是 *kms.Client 中用到的子集，便于测试替换
type API interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

// Config AWS KMS 连接配置
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string
}

// Client AWS KMS 托管客户端
type Client struct {
	api API
}

var _ custody.Client = (*Client)(nil)

// New 使用已有的 API 实现创建客户端
func New(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig 根据配置加载 AWS 凭证并创建客户端
// 未配置静态凭证时使用默认凭证链
func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("both access key id and secret access key are required for static credentials")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	api := kms.NewFromConfig(awsCfg, func(o *kms.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(api), nil
}

// GetPublicKey 获取 DER 编码的 SubjectPublicKeyInfo
func (c *Client) GetPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	if keyID == "" {
		return nil, errors.New("key id is required")
	}

	out, err := c.api.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out.PublicKey, nil
}

// SignDigest 以 DIGEST 模式调用 KMS Sign，KMS 不会再次哈希
func (c *Client) SignDigest(ctx context.Context, req *custody.SignDigestRequest) ([]byte, error) {
	if err := custody.ValidateSignDigestRequest(req); err != nil {
		return nil, err
	}

	out, err := c.api.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(req.KeyID),
		Message:          req.Digest,
		MessageType:      types.MessageType(req.MessageType),
		SigningAlgorithm: types.SigningAlgorithmSpec(req.Algorithm),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out.Signature, nil
}

func mapError(err error) error {
	var (
		notFound          *types.NotFoundException
		invalidArn        *types.InvalidArnException
		disabled          *types.DisabledException
		invalidState      *types.KMSInvalidStateException
		keyUnavailable    *types.KeyUnavailableException
		dependencyTimeout *types.DependencyTimeoutException
		internal          *types.KMSInternalException
	)

	switch {
	case errors.As(err, &notFound), errors.As(err, &invalidArn):
		return fmt.Errorf("%w: %w", custody.ErrKeyNotFound, err)
	case errors.As(err, &disabled),
		errors.As(err, &invalidState),
		errors.As(err, &keyUnavailable),
		errors.As(err, &dependencyTimeout),
		errors.As(err, &internal):
		return fmt.Errorf("%w: %w", custody.ErrUnavailable, err)
	default:
		return errors.Wrap(err, "aws kms request failed")
	}
}
