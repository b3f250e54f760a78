package awskms

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI for testing
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kms.GetPublicKeyOutput), args.Error(1)
}

func (m *MockAPI) Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kms.SignOutput), args.Error(1)
}

func TestClient_GetPublicKey(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()

	api.On("GetPublicKey", ctx, mock.MatchedBy(func(in *kms.GetPublicKeyInput) bool {
		return aws.ToString(in.KeyId) == "alias/hedera"
	})).Return(&kms.GetPublicKeyOutput{
		PublicKey: []byte{0x30, 0x56},
		KeySpec:   types.KeySpecEccSecgP256k1,
	}, nil)

	material, err := client.GetPublicKey(ctx, "alias/hedera")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x56}, material)
	api.AssertExpectations(t)
}

func TestClient_GetPublicKey_EmptyKeyID(t *testing.T) {
	api := new(MockAPI)
	client := New(api)

	_, err := client.GetPublicKey(context.Background(), "")
	assert.Error(t, err)
	api.AssertNotCalled(t, "GetPublicKey", mock.Anything, mock.Anything)
}

func TestClient_SignDigest(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()
	digest := make([]byte, custody.DigestLength)
	digest[0] = 0xab

	api.On("Sign", ctx, mock.MatchedBy(func(in *kms.SignInput) bool {
		return aws.ToString(in.KeyId) == "alias/hedera" &&
			in.MessageType == types.MessageTypeDigest &&
			in.SigningAlgorithm == types.SigningAlgorithmSpecEcdsaSha256 &&
			assert.ObjectsAreEqual(digest, in.Message)
	})).Return(&kms.SignOutput{Signature: []byte{0x30, 0x06}}, nil)

	sig, err := client.SignDigest(ctx, &custody.SignDigestRequest{
		KeyID:       "alias/hedera",
		Digest:      digest,
		MessageType: custody.MessageTypeDigest,
		Algorithm:   custody.AlgorithmECDSASHA256,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x06}, sig)
	api.AssertExpectations(t)
}

func TestClient_SignDigest_InvalidDigestLength(t *testing.T) {
	api := new(MockAPI)
	client := New(api)

	_, err := client.SignDigest(context.Background(), &custody.SignDigestRequest{
		KeyID:       "alias/hedera",
		Digest:      []byte{1, 2, 3},
		MessageType: custody.MessageTypeDigest,
		Algorithm:   custody.AlgorithmECDSASHA256,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, custody.ErrInvalidDigestLength))
	api.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", &types.NotFoundException{Message: aws.String("no such key")}, custody.ErrKeyNotFound},
		{"invalid arn", &types.InvalidArnException{Message: aws.String("bad arn")}, custody.ErrKeyNotFound},
		{"disabled", &types.DisabledException{}, custody.ErrUnavailable},
		{"invalid state", &types.KMSInvalidStateException{}, custody.ErrUnavailable},
		{"key unavailable", &types.KeyUnavailableException{}, custody.ErrUnavailable},
		{"dependency timeout", &types.DependencyTimeoutException{}, custody.ErrUnavailable},
		{"internal", &types.KMSInternalException{}, custody.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(errors.Wrap(tt.err, "operation error KMS"))
			assert.True(t, errors.Is(mapped, tt.target), "got %v", mapped)

			var original error = tt.err
			assert.True(t, errors.Is(mapped, original), "cause must be preserved")
		})
	}

	t.Run("unclassified", func(t *testing.T) {
		mapped := mapError(&types.InvalidKeyUsageException{})
		assert.False(t, errors.Is(mapped, custody.ErrKeyNotFound))
		assert.False(t, errors.Is(mapped, custody.ErrUnavailable))
	})
}

func TestNewFromConfig_PartialStaticCredentials(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{Region: "eu-central-1", AccessKeyID: "AKIA"})
	assert.Error(t, err)
}
