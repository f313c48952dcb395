// Command tnsctl is the registry operator CLI: schema migration, genesis
// seeding, one-shot keeper sweeps and devnet funding.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tns/internal/platform/config"
	"tns/internal/platform/logger"
	"tns/internal/registry/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tnsctl",
		Short:         "Operate the token naming registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd(), newSeedCmd(), newKeeperCmd(), newFundCmd(), newTokenCmd())
	return cmd
}

// openApp builds the registry from the same environment the server reads.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger.New(cfg.LogLevel), prometheus.NewRegistry())
}
