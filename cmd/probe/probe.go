package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kashguard/go-kms-signer/internal/util/command"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	urlFlag     string = "url"
	timeoutFlag string = "timeout"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

func newProbeCommand(name, path, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: fmt.Sprintf(`Requests %s on a running serve instance and exits non-zero
unless it answers 200. The target defaults to the configured listen address.`, path),
		RunE: func(cmd *cobra.Command, _ []string) error {
			baseURL, _ := cmd.Flags().GetString(urlFlag)
			if baseURL == "" {
				cfg, err := command.LoadConfig(cmd)
				if err != nil {
					return err
				}
				baseURL = BaseURL(cfg.Echo.ListenAddress)
			}
			timeout, _ := cmd.Flags().GetDuration(timeoutFlag)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := Check(ctx, http.DefaultClient, strings.TrimSuffix(baseURL, "/")+path); err != nil {
				log.Error().Err(err).Str("probe", name).Msg("Probe failed")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", name)
			return nil
		},
	}

	cmd.Flags().String(urlFlag, "", "base url of the server (default derived from SERVER_ECHO_LISTEN_ADDRESS)")
	cmd.Flags().Duration(timeoutFlag, 5*time.Second, "probe timeout")

	return cmd
}

func newLiveness() *cobra.Command {
	return newProbeCommand("liveness", "/health/live", "Checks that the server process is alive")
}

func newReadiness() *cobra.Command {
	return newProbeCommand("readiness", "/health/ready", "Checks that the server resolved its key and accepts requests")
}

// BaseURL 将监听地址转换为本机可访问的地址
func BaseURL(listenAddress string) string {
	if strings.HasPrefix(listenAddress, ":") {
		return "http://127.0.0.1" + listenAddress
	}
	return "http://" + listenAddress
}

// Check 请求 url 并要求返回 200
func Check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}

	res, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to request %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("probe %s returned status %d", url, res.StatusCode)
	}
	return nil
}
