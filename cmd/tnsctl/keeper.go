package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tns/internal/registry/keeper"
	"tns/pkg/domain"
)

func newKeeperCmd() *cobra.Command {
	var (
		identity  string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "keeper",
		Short: "Run one keeper sweep and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := domain.ParseAddress(identity)
			if err != nil {
				return fmt.Errorf("--identity: %w", err)
			}
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			k, err := keeper.New(app.Registry, app.Ledger, app.Assets, addr,
				keeper.WithLogger(app.Logger),
				keeper.WithMetrics(app.Metrics),
				keeper.WithBatchSize(batchSize),
			)
			if err != nil {
				return err
			}
			report, err := k.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "canceled %d, drift closed %d, failed %d, rewards %d\n",
				report.Canceled, report.Drifted, report.Failed, report.Rewards)
			return nil
		},
	}
	cmd.Flags().StringVar(&identity, "identity", "", "address credited with sweep rewards")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "records fetched per page")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}
