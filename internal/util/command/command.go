package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kashguard/go-kms-signer/internal/api"
	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
	"github.com/kashguard/go-kms-signer/internal/kms/custody/backend"
	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	ConfigFlag  = "config"
	VerboseFlag = "verbose"
)

var dotEnvFiles = []string{".env.local", ".env"}

func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <subcommand>", name),
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Println(err)
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// LoadConfig 读取 .env、--config 指定的文件和环境变量，--verbose 时提升日志级别
func LoadConfig(cmd *cobra.Command) (config.Server, error) {
	if err := config.LoadDotEnv(dotEnvFiles...); err != nil {
		return config.Server{}, err
	}

	var configFile string
	if f := cmd.Flags().Lookup(ConfigFlag); f != nil {
		configFile = f.Value.String()
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Server{}, err
	}

	if verbose, err := cmd.Flags().GetBool(VerboseFlag); err == nil && verbose {
		cfg.Logger.Level = zerolog.DebugLevel
	}

	return cfg, nil
}

// ConfigureLogger 按配置设置全局 zerolog
func ConfigureLogger(cfg config.LoggerServer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Level)
	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = "15:04:05"
		}))
	}
}

// NewCustodyClient 创建托管客户端并挂上指标；reg 为 nil 时不注册指标
func NewCustodyClient(ctx context.Context, cfg config.Server, reg prometheus.Registerer) (*custody.InstrumentedClient, error) {
	client, err := backend.New(ctx, cfg.Custody)
	if err != nil {
		return nil, err
	}
	return custody.Instrument(client, reg), nil
}

// WithSigner 解析配置中的 key 并把 RemoteSigner 交给 f，结束后关闭托管客户端
func WithSigner(ctx context.Context, cfg config.Server, reg prometheus.Registerer, f func(ctx context.Context, s *signer.RemoteSigner) error) error {
	ConfigureLogger(cfg.Logger)

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	digest, err := signer.ParseDigest(cfg.Signer.Digest)
	if err != nil {
		return err
	}

	client, err := NewCustodyClient(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer closeClient(client)

	s, err := signer.Resolve(ctx, client, cfg.Custody.KeyID, signer.WithDigest(digest))
	if err != nil {
		return err
	}

	return f(ctx, s)
}

// WithServer 初始化 api.Server 并交给 f，结束后关闭服务
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	ConfigureLogger(cfg.Logger)

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	s, err := api.InitNewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		}
	}()

	return f(ctx, s)
}

func closeClient(client custody.Client) {
	if closer, ok := client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close custody client")
		}
	}
}
