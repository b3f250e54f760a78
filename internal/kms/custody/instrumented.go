package custody

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const (
	operationGetPublicKey = "get_public_key"
	operationSignDigest   = "sign_digest"

	outcomeOK            = "ok"
	outcomeNotFound      = "not_found"
	outcomeUnavailable   = "unavailable"
	outcomeInvalidDigest = "invalid_digest"
	outcomeError         = "error"
)

// InstrumentedClient 为托管服务调用记录指标和日志
type InstrumentedClient struct {
	next     Client
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ Client = (*InstrumentedClient)(nil)

// Instrument wraps next and registers its collectors on reg.
func Instrument(next Client, reg prometheus.Registerer) *InstrumentedClient {
	factory := promauto.With(reg)
	return &InstrumentedClient{
		next: next,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kms_signer",
			Subsystem: "custody",
			Name:      "requests_total",
			Help:      "Total number of custody service requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kms_signer",
			Subsystem: "custody",
			Name:      "request_duration_seconds",
			Help:      "Latency of custody service requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// GetPublicKey 获取公钥
func (c *InstrumentedClient) GetPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	start := time.Now()
	material, err := c.next.GetPublicKey(ctx, keyID)
	c.observe(operationGetPublicKey, keyID, start, err)
	return material, err
}

// SignDigest 摘要签名
func (c *InstrumentedClient) SignDigest(ctx context.Context, req *SignDigestRequest) ([]byte, error) {
	start := time.Now()
	sig, err := c.next.SignDigest(ctx, req)
	keyID := ""
	if req != nil {
		keyID = req.KeyID
	}
	c.observe(operationSignDigest, keyID, start, err)
	return sig, err
}

// Close closes the wrapped client if it holds resources.
func (c *InstrumentedClient) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *InstrumentedClient) observe(operation, keyID string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := classify(err)

	c.requests.WithLabelValues(operation, outcome).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())

	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Str("operation", operation).
		Str("key_id", keyID).
		Str("outcome", outcome).
		Dur("duration", elapsed).
		Msg("Custody service request finished")
}

func classify(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrKeyNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrInvalidDigestLength):
		return outcomeInvalidDigest
	default:
		return outcomeError
	}
}
