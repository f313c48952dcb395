package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tns/internal/registry/seed"
	"tns/pkg/domain"
	"tns/pkg/requestcontext"
)

func newSeedCmd() *cobra.Command {
	var (
		file  string
		admin string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register the genesis symbols listed in a YAML file",
		Long: `Seed registers each entry of the file as the registry admin, without
payment. Symbols that already exist are skipped, so the command can be
rerun after a partial failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adminAddr, err := domain.ParseAddress(admin)
			if err != nil {
				return fmt.Errorf("--admin: %w", err)
			}
			entries, err := seed.Load(file)
			if err != nil {
				return err
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := requestcontext.WithSigner(cmd.Context(), adminAddr)
			res, err := seed.NewLoader(app.Registry, app.Assets, app.Logger).Apply(ctx, entries)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seeded %d, skipped %d, failed %d\n", len(res.Seeded), len(res.Skipped), len(res.Failed))
			failed := make([]string, 0, len(res.Failed))
			for symbol := range res.Failed {
				failed = append(failed, symbol)
			}
			sort.Strings(failed)
			for _, symbol := range failed {
				fmt.Fprintf(out, "  %s: %v\n", symbol, res.Failed[symbol])
			}
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d entries failed", len(res.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file")
	cmd.Flags().StringVar(&admin, "admin", "", "registry admin address")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}
