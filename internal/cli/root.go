// Package cli implements the acuotaz-checkout command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "acuotaz-checkout",
		Short: "Checkout service for the Acuotaz hosted-redirect payment method",
		Long: `acuotaz-checkout verifies orders paid with ACUOTAZ_PM, marks their payment
as pending and sends the shopper to the Apurata hosted page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newRedirectURLCmd())

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
