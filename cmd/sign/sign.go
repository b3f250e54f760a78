package sign

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kashguard/go-kms-signer/internal/kms/signer"
	"github.com/kashguard/go-kms-signer/internal/util/command"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	messageFlag    = "message"
	messageHexFlag = "message-hex"
	verifyFlag     = "verify"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Signs a message with the configured custody key",
		Long: `Hashes the message locally, has the custody service sign the digest and
prints the 64-byte r||s signature as hex.`,
		RunE: run,
	}

	cmd.Flags().String(messageFlag, "", "message to sign (utf-8)")
	cmd.Flags().String(messageHexFlag, "", "message to sign (hex, optional 0x prefix)")
	cmd.Flags().Bool(verifyFlag, false, "verify the signature against the resolved public key")
	cmd.MarkFlagsMutuallyExclusive(messageFlag, messageHexFlag)
	cmd.MarkFlagsOneRequired(messageFlag, messageHexFlag)

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	message, err := readMessage(cmd)
	if err != nil {
		return err
	}
	verify, _ := cmd.Flags().GetBool(verifyFlag)

	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	return command.WithSigner(cmd.Context(), cfg, nil, func(ctx context.Context, s *signer.RemoteSigner) error {
		sig, err := s.Sign(ctx, message)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig))

		if !verify {
			return nil
		}
		ok, err := s.Verify(message, sig)
		if err != nil {
			return errors.Wrap(err, "failed to verify signature")
		}
		if !ok {
			return errors.New("signature does not verify against the resolved public key")
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "signature verified")
		return nil
	})
}

func readMessage(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed(messageHexFlag) {
		s, _ := cmd.Flags().GetString(messageHexFlag)
		message, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode --message-hex")
		}
		return message, nil
	}

	s, _ := cmd.Flags().GetString(messageFlag)
	return []byte(s), nil
}
