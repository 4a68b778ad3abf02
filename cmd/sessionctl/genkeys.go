package main

import (
	"fmt"

	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/spf13/cobra"
)

func newGenkeysCmd() *cobra.Command {
	var envFormat bool

	cmd := &cobra.Command{
		Use:   "genkeys",
		Short: "Generate a fresh signing and seal key pair",
		Long: `Generates an Ed25519 signing key and an AES-256-GCM seal key as
base64url-encoded JWKs, ready to paste into the environment as
SIGN_KEY and ENC_KEY. Rotating SIGN_KEY invalidates outstanding access
tokens; rotating ENC_KEY additionally strands every stored session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			signJWK, err := jwtx.GenerateSigningJWK()
			if err != nil {
				return fmt.Errorf("generate signing key: %w", err)
			}
			signMaterial, err := signJWK.Encode()
			if err != nil {
				return err
			}

			sealJWK, err := jwtx.GenerateSealJWK()
			if err != nil {
				return fmt.Errorf("generate seal key: %w", err)
			}
			sealMaterial, err := sealJWK.Encode()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if envFormat {
				fmt.Fprintf(out, "SIGN_KEY=%s\n", signMaterial)
				fmt.Fprintf(out, "ENC_KEY=%s\n", sealMaterial)
				return nil
			}

			fmt.Fprintf(out, "export SIGN_KEY=%q\n", signMaterial)
			fmt.Fprintf(out, "export ENC_KEY=%q\n", sealMaterial)
			return nil
		},
	}

	cmd.Flags().BoolVar(&envFormat, "env", false, "print in .env format instead of shell exports")
	return cmd
}
