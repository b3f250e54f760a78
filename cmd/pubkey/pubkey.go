package pubkey

import (
	"context"
	"fmt"

	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/kashguard/go-kms-signer/internal/util/command"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Resolves the configured key and prints its public forms",
		Long: `Fetches the public key of the configured custody key once and prints
the compressed point, the DER encoded form and the derived EVM address.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithSigner(cmd.Context(), cfg, nil, func(_ context.Context, s *signer.RemoteSigner) error {
				pub := s.PublicKey()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "key_id:         %s\n", s.KeyID())
				fmt.Fprintf(out, "public_key:     %s\n", pub.StringRaw())
				fmt.Fprintf(out, "public_key_der: %s\n", pub.StringDER())
				fmt.Fprintf(out, "evm_address:    %s\n", pub.EVMAddress())
				return nil
			})
		},
	}
}
