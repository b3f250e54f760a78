package config

import (
	"os"
	"strings"

	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	ProviderAWS      = "aws"
	ProviderGCP      = "gcp"
	ProviderSoftware = "software"
)

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	PrettyPrintConsole bool
}

type EchoServer struct {
	ListenAddress string
	Debug         bool
}

// AWS 托管服务连接参数；未设置静态凭证时使用默认凭证链
type AWS struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string
}

type GCP struct {
	CredentialsFile string
}

// Software 进程内密钥环，仅用于开发和测试
type Software struct {
	PrivateKeyHex string
}

type Custody struct {
	Provider string
	KeyID    string
	AWS      AWS
	GCP      GCP
	Software Software
}

type Signer struct {
	Digest     string
	BatchLimit int
}

type Server struct {
	Logger  LoggerServer
	Custody Custody
	Signer  Signer
	Echo    EchoServer
}

// Validate 校验配置组合是否可用
func (c Server) Validate() error {
	switch c.Custody.Provider {
	case ProviderAWS:
		if c.Custody.AWS.Region == "" {
			return errors.New("aws custody provider requires a region")
		}
		if (c.Custody.AWS.AccessKeyID == "") != (c.Custody.AWS.SecretAccessKey == "") {
			return errors.New("aws static credentials require both access key id and secret access key")
		}
	case ProviderGCP, ProviderSoftware:
	default:
		return errors.Errorf("unsupported custody provider %q", c.Custody.Provider)
	}

	if c.Custody.KeyID == "" {
		return errors.New("custody key id is required")
	}

	if _, err := signer.ParseDigest(c.Signer.Digest); err != nil {
		return err
	}

	if c.Signer.BatchLimit < 0 {
		return errors.Errorf("signer batch limit must not be negative, got %d", c.Signer.BatchLimit)
	}

	return nil
}

// LoadDotEnv 加载存在的 .env 文件，已有的环境变量不会被覆盖
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "failed to stat env file %s", file)
		}
		if err := gotenv.Load(file); err != nil {
			return errors.Wrapf(err, "failed to load env file %s", file)
		}
	}
	return nil
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests.
func DefaultServiceConfigFromEnv() Server {
	return fromViper(newViper())
}

// Load 按 默认值 < 配置文件 < 环境变量 的优先级构造配置
// configFile 为空时只读取环境变量
func Load(configFile string) (Server, error) {
	v := newViper()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("logger.level", zerolog.InfoLevel.String())
	v.SetDefault("logger.request_level", zerolog.DebugLevel.String())
	v.SetDefault("logger.pretty_print_console", false)
	v.SetDefault("custody.provider", ProviderAWS)
	v.SetDefault("signer.digest", "keccak256")
	v.SetDefault("signer.batch_limit", 8)
	v.SetDefault("echo.listen_address", ":8080")
	v.SetDefault("echo.debug", false)

	bindings := map[string][]string{
		"logger.level":                     {"SERVER_LOGGER_LEVEL"},
		"logger.request_level":             {"SERVER_LOGGER_REQUEST_LEVEL"},
		"logger.pretty_print_console":      {"SERVER_LOGGER_PRETTY_PRINT_CONSOLE"},
		"custody.provider":                 {"KMS_PROVIDER"},
		"custody.key_id":                   {"KMS_KEY_ID", "AWS_KMS_KEY_ID", "GCP_KMS_KEY_NAME"},
		"custody.aws.region":               {"AWS_KMS_REGION", "AWS_REGION"},
		"custody.aws.access_key_id":        {"AWS_KMS_ACCESS_KEY_ID"},
		"custody.aws.secret_access_key":    {"AWS_KMS_SECRET_ACCESS_KEY"},
		"custody.aws.session_token":        {"AWS_KMS_SESSION_TOKEN"},
		"custody.aws.endpoint":             {"AWS_KMS_ENDPOINT"},
		"custody.gcp.credentials_file":     {"GOOGLE_APPLICATION_CREDENTIALS"},
		"custody.software.private_key_hex": {"KMS_SOFTWARE_PRIVATE_KEY"},
		"signer.digest":                    {"SIGNER_DIGEST"},
		"signer.batch_limit":               {"SIGNER_BATCH_LIMIT"},
		"echo.listen_address":              {"SERVER_ECHO_LISTEN_ADDRESS"},
		"echo.debug":                       {"SERVER_ECHO_DEBUG"},
	}
	for key, envs := range bindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	return v
}

func fromViper(v *viper.Viper) Server {
	return Server{
		Logger: LoggerServer{
			Level:              parseLevel(v.GetString("logger.level"), zerolog.InfoLevel),
			RequestLevel:       parseLevel(v.GetString("logger.request_level"), zerolog.DebugLevel),
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
		Custody: Custody{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("custody.provider"))),
			KeyID:    v.GetString("custody.key_id"),
			AWS: AWS{
				Region:          v.GetString("custody.aws.region"),
				AccessKeyID:     v.GetString("custody.aws.access_key_id"),
				SecretAccessKey: v.GetString("custody.aws.secret_access_key"),
				SessionToken:    v.GetString("custody.aws.session_token"),
				Endpoint:        v.GetString("custody.aws.endpoint"),
			},
			GCP: GCP{
				CredentialsFile: v.GetString("custody.gcp.credentials_file"),
			},
			Software: Software{
				PrivateKeyHex: v.GetString("custody.software.private_key_hex"),
			},
		},
		Signer: Signer{
			Digest:     v.GetString("signer.digest"),
			BatchLimit: v.GetInt("signer.batch_limit"),
		},
		Echo: EchoServer{
			ListenAddress: v.GetString("echo.listen_address"),
			Debug:         v.GetBool("echo.debug"),
		},
	}
}

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return fallback
	}
	return level
}
