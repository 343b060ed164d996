package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parking-lot",
	Short: "Multi-level parking facility with tickets and payment settlement",
	Long: `parking-lot runs a multi-level parking facility. Vehicles are allocated
the smallest free spot that fits them, receive a ticket, and pay an hourly
fee when they leave.

The facility can be driven from an interactive shell, over HTTP, or both.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./parking.yaml or $HOME/.config/parking/parking.yaml)")
	rootCmd.PersistentFlags().Bool("no-telemetry", false, "keep traces and metrics in process instead of exporting over OTLP")
}
