package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile ruta del archivo de configuración (--config)
var cfgFile string

// verbose fuerza log level debug
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "storepos",
	Short: "storepos - batch sale accumulator for the store inventory API",
	Long: `storepos builds a multi-line batch sale against the store inventory API.

Each line is validated against a stock snapshot, recorded as a sale, and the
stock level is patched before the line joins the batch. The batch is persisted
locally and submitted as one combined sale record.

Example Usage:
  storepos serve                         # Serve the local batch sale API
  storepos session show                  # Print the persisted batch sale
  storepos session export --out sale.xlsx
  storepos session discard`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute ejecuta el comando raíz; llamado desde main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"storepos.yaml",
		"Path to the configuration file (optional)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
