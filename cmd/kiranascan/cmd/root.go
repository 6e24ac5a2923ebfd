package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kiranascan",
	Short: "Receipt digitization backend for kirana shops",
	Long: `KiranaScan turns photos of handwritten and printed shop receipts into
structured line items matched against the shop's inventory catalog.

Modes:
  serve    Run the HTTP API (receipt upload, inventory, billing)
  extract  Run the extraction pipeline on saved OCR output

Examples:
  kiranascan serve
  kiranascan extract --fragments ocr.json --catalog catalog.json`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
