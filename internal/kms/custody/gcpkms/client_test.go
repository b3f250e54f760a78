package gcpkms

import (
	"context"
	"encoding/pem"
	"testing"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const keyName = "projects/p/locations/global/keyRings/r/cryptoKeys/hedera/cryptoKeyVersions/1"

// MockAPI for testing
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest, opts ...gax.CallOption) (*kmspb.PublicKey, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kmspb.PublicKey), args.Error(1)
}

func (m *MockAPI) AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest, opts ...gax.CallOption) (*kmspb.AsymmetricSignResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kmspb.AsymmetricSignResponse), args.Error(1)
}

func (m *MockAPI) Close() error {
	return m.Called().Error(0)
}

func TestClient_GetPublicKey(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()

	der := []byte{0x30, 0x56, 0x30, 0x10}
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	api.On("GetPublicKey", ctx, mock.MatchedBy(func(req *kmspb.GetPublicKeyRequest) bool {
		return req.GetName() == keyName
	})).Return(&kmspb.PublicKey{
		Pem:       pemText,
		PemCrc32C: wrapperspb.Int64(int64(checksum([]byte(pemText)))),
		Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256,
	}, nil)

	material, err := client.GetPublicKey(ctx, keyName)
	require.NoError(t, err)
	assert.Equal(t, der, material)
}

func TestClient_GetPublicKey_Corrupted(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()

	api.On("GetPublicKey", ctx, mock.Anything).Return(&kmspb.PublicKey{
		Pem:       "-----BEGIN PUBLIC KEY-----\nMAA=\n-----END PUBLIC KEY-----\n",
		PemCrc32C: wrapperspb.Int64(1),
	}, nil)

	_, err := client.GetPublicKey(ctx, keyName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, custody.ErrUnavailable))
}

func TestClient_GetPublicKey_NotPEM(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()

	api.On("GetPublicKey", ctx, mock.Anything).Return(&kmspb.PublicKey{Pem: "not pem"}, nil)

	_, err := client.GetPublicKey(ctx, keyName)
	assert.Error(t, err)
}

func TestClient_SignDigest(t *testing.T) {
	api := new(MockAPI)
	client := New(api)
	ctx := context.Background()

	digest := make([]byte, custody.DigestLength)
	digest[31] = 0x01
	signature := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}

	api.On("AsymmetricSign", ctx, mock.MatchedBy(func(req *kmspb.AsymmetricSignRequest) bool {
		return req.GetName() == keyName &&
			assert.ObjectsAreEqual(digest, req.GetDigest().GetSha256()) &&
			req.GetDigestCrc32C().GetValue() == int64(checksum(digest))
	})).Return(&kmspb.AsymmetricSignResponse{
		Name:                 keyName,
		Signature:            signature,
		SignatureCrc32C:      wrapperspb.Int64(int64(checksum(signature))),
		VerifiedDigestCrc32C: true,
	}, nil)

	sig, err := client.SignDigest(ctx, &custody.SignDigestRequest{
		KeyID:       keyName,
		Digest:      digest,
		MessageType: custody.MessageTypeDigest,
		Algorithm:   custody.AlgorithmECDSASHA256,
	})
	require.NoError(t, err)
	assert.Equal(t, signature, sig)
	api.AssertExpectations(t)
}

func TestClient_SignDigest_IntegrityChecks(t *testing.T) {
	digest := make([]byte, custody.DigestLength)
	req := &custody.SignDigestRequest{
		KeyID:       keyName,
		Digest:      digest,
		MessageType: custody.MessageTypeDigest,
		Algorithm:   custody.AlgorithmECDSASHA256,
	}

	tests := []struct {
		name string
		resp *kmspb.AsymmetricSignResponse
	}{
		{
			name: "digest not verified",
			resp: &kmspb.AsymmetricSignResponse{Signature: []byte{0x30}, VerifiedDigestCrc32C: false},
		},
		{
			name: "signature checksum mismatch",
			resp: &kmspb.AsymmetricSignResponse{
				Signature:            []byte{0x30},
				SignatureCrc32C:      wrapperspb.Int64(42),
				VerifiedDigestCrc32C: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("AsymmetricSign", mock.Anything, mock.Anything).Return(tt.resp, nil)

			_, err := New(api).SignDigest(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, custody.ErrUnavailable))
		})
	}
}

func TestClient_SignDigest_RejectsUnsupportedAlgorithm(t *testing.T) {
	api := new(MockAPI)

	_, err := New(api).SignDigest(context.Background(), &custody.SignDigestRequest{
		KeyID:       keyName,
		Digest:      make([]byte, custody.DigestLength),
		MessageType: custody.MessageTypeDigest,
		Algorithm:   "ECDSA_SHA_384",
	})
	assert.Error(t, err)
	api.AssertNotCalled(t, "AsymmetricSign", mock.Anything, mock.Anything)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code   codes.Code
		target error
	}{
		{codes.NotFound, custody.ErrKeyNotFound},
		{codes.Unavailable, custody.ErrUnavailable},
		{codes.DeadlineExceeded, custody.ErrUnavailable},
		{codes.ResourceExhausted, custody.ErrUnavailable},
		{codes.Internal, custody.ErrUnavailable},
		{codes.FailedPrecondition, custody.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			mapped := mapError(status.Error(tt.code, "boom"))
			assert.True(t, errors.Is(mapped, tt.target), "got %v", mapped)
			assert.Equal(t, tt.code, status.Code(mapped), "grpc status must survive wrapping")
		})
	}

	t.Run("permission denied stays unclassified", func(t *testing.T) {
		mapped := mapError(status.Error(codes.PermissionDenied, "nope"))
		assert.False(t, errors.Is(mapped, custody.ErrKeyNotFound))
		assert.False(t, errors.Is(mapped, custody.ErrUnavailable))
	})
}

func TestClient_Close(t *testing.T) {
	api := new(MockAPI)
	api.On("Close").Return(nil)

	require.NoError(t, New(api).Close())
	api.AssertExpectations(t)
}
