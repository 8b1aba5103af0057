package cli

import (
	"fmt"

	apppay "github.com/Zhima-Mochi/acuotaz-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newRedirectURLCmd() *cobra.Command {
	var (
		orderNo string
		amount  string
		base    string
	)

	cmd := &cobra.Command{
		Use:   "redirect-url",
		Short: "Print the Apurata redirect URL for an order",
		Example: `  acuotaz-checkout redirect-url --order 00001234 --amount 19.5
  acuotaz-checkout redirect-url --order A1 --amount 50 --base https://sandbox.apurata.com/pos/crear-orden-y-continuar`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if base == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				base = cfg.RedirectBaseURL
			}

			b, err := apppay.NewRedirectBuilder(base)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Build(orderNo, amt))
			return nil
		},
	}

	cmd.Flags().StringVarP(&orderNo, "order", "o", "", "Order number")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Payment amount")
	cmd.Flags().StringVar(&base, "base", "", "Redirect base URL (defaults to redirect_base_url)")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
