package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version versión de la aplicación; se fija con -ldflags "-X storepos/cmd.Version=..."
var Version = "1.0.0"

// BuildDate fecha de build; se fija con -ldflags
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "storepos")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
