package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	jwttoken "tns/internal/jwt_token"
	"tns/internal/platform/config"
)

func newTokenCmd() *cobra.Command {
	var (
		keyFile string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signer token from an ed25519 private key",
		Long:  "The key file holds a base64 encoded 64 byte ed25519 private key. The token is printed to stdout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(keyFile)
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
			if err != nil {
				return fmt.Errorf("decode key: %w", err)
			}
			if len(key) != ed25519.PrivateKeySize {
				return fmt.Errorf("key must be %d bytes, got %d", ed25519.PrivateKeySize, len(key))
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			token, err := jwttoken.NewJWTService(cfg.JWTAudience).GenerateSignerToken(ed25519.PrivateKey(key), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key", "", "path to the private key")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
