package cmd

import (
	"fmt"
	"os"

	"github.com/kashguard/go-kms-signer/cmd/probe"
	"github.com/kashguard/go-kms-signer/cmd/pubkey"
	"github.com/kashguard/go-kms-signer/cmd/serve"
	"github.com/kashguard/go-kms-signer/cmd/sign"
	"github.com/kashguard/go-kms-signer/internal/util/command"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kms-signer",
	Short: "ECDSA(secp256k1) signer backed by a remote key custody service",
	Long: `kms-signer exposes a secp256k1 key held by AWS KMS, Google Cloud KMS or an
in-process keyring as a local signer producing 64-byte r||s signatures.

Requires configuration through ENV, a .env file or --config.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(command.ConfigFlag, "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP(command.VerboseFlag, "v", false, "enable debug logging")

	rootCmd.AddCommand(
		pubkey.New(),
		sign.New(),
		serve.New(),
		probe.New(),
	)
}
