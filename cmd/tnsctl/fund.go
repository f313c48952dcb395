package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tns/internal/registry/models"
	"tns/pkg/domain"
)

func newFundCmd() *cobra.Command {
	var (
		account  string
		currency string
		amount   uint64
	)
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit an account balance on the ledger",
		Long:  "Fund credits subunits of a settlement currency. It exists for devnets and tests; production balances come from deposits.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := domain.ParseAddress(account)
			if err != nil {
				return fmt.Errorf("--account: %w", err)
			}
			method, err := models.ParsePaymentMethod(currency)
			if err != nil {
				return err
			}
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Registry.Fund(cmd.Context(), addr, method, amount); err != nil {
				return err
			}
			balance, err := app.Registry.Balance(cmd.Context(), addr, method)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s balance: %d\n", addr, method, balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account address")
	cmd.Flags().StringVar(&currency, "currency", "usdc", "native, usdc, usdt or tns")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in subunits")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
