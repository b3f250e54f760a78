package api

import (
	"context"

	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/backend"
	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewMetricsRegistry 每个 Server 使用独立的 registry，避免重复注册
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewCustodyClient 按配置创建托管客户端并记录指标
func NewCustodyClient(cfg config.Server, reg *prometheus.Registry) (*custody.InstrumentedClient, error) {
	client, err := backend.New(context.Background(), cfg.Custody)
	if err != nil {
		return nil, err
	}
	return custody.Instrument(client, reg), nil
}

// NewSigner 启动时解析一次公钥，之后的签名请求复用该结果
func NewSigner(cfg config.Server, client custody.Client) (*signer.RemoteSigner, error) {
	digest, err := signer.ParseDigest(cfg.Signer.Digest)
	if err != nil {
		return nil, err
	}
	return signer.Resolve(context.Background(), client, cfg.Custody.KeyID, signer.WithDigest(digest))
}
