package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"storepos/src/batchsale/application/usecase"
	"storepos/src/batchsale/infrastructure/export"

	"github.com/spf13/cobra"
)

var exportOut string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or discard the persisted batch sale",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted batch sale as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.newSession(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(session.View())
	},
}

var sessionDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the persisted batch sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.newSession(cmd.Context())
		if err != nil {
			return err
		}
		sale := session.Sale()
		items := sale.TotalItems()
		if err := session.Discard(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Discarded batch sale (%d items)\n", items)
		return nil
	},
}

var sessionExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted batch sale lines to XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.newSession(cmd.Context())
		if err != nil {
			return err
		}

		exportUC := usecase.NewExportBatchSaleUseCase(export.NewXLSXExporter())
		data, err := exportUC.Execute(session.Sale())
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = exportUC.Filename()
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported batch sale to %s\n", out)
		return nil
	},
}

func init() {
	sessionExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default batch-sale.xlsx)")

	sessionCmd.AddCommand(sessionShowCmd, sessionDiscardCmd, sessionExportCmd)
	rootCmd.AddCommand(sessionCmd)
}
