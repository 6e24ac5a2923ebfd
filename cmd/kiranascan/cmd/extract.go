package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kiranascan/backend/internal/domain"
	"github.com/kiranascan/backend/internal/extract"
)

var (
	extractFragmentsPath string
	extractCatalogPath   string
	extractAlgorithm     string
	extractMode          string
	extractYTolerance    float64
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extraction pipeline on saved OCR output",
	Long: `Run line reconstruction, cleaning and catalog matching over a JSON
file of OCR fragments, without the HTTP server or OCR sidecar.

The fragments file holds an array of {polygon, text, confidence}
objects. The optional catalog file holds an array of inventory items;
without it every extracted line is reported unmatched.

Examples:
  kiranascan extract --fragments ocr.json
  kiranascan extract --fragments ocr.json --catalog catalog.json --algorithm hybrid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fragmentsData, err := os.ReadFile(extractFragmentsPath)
		if err != nil {
			return fmt.Errorf("read fragments: %w", err)
		}
		var fragments []domain.RawFragment
		if err := json.Unmarshal(fragmentsData, &fragments); err != nil {
			return fmt.Errorf("parse fragments: %w", err)
		}

		var catalog []domain.CatalogEntry
		if extractCatalogPath != "" {
			catalogData, err := os.ReadFile(extractCatalogPath)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			if err := json.Unmarshal(catalogData, &catalog); err != nil {
				return fmt.Errorf("parse catalog: %w", err)
			}
		}

		pipeline := extract.NewPipeline(extract.Config{
			Algorithm:         extractAlgorithm,
			Mode:              extract.Mode(extractMode),
			YTolerance:        extractYTolerance,
			MinLineConfidence: extract.MinLineConfidence,
		}, zerolog.New(os.Stderr).With().Timestamp().Logger())

		extraction, err := pipeline.Process(context.Background(), fragments, catalog)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(extraction)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFragmentsPath, "fragments", "", "path to OCR fragments JSON (required)")
	extractCmd.Flags().StringVar(&extractCatalogPath, "catalog", "", "path to catalog JSON")
	extractCmd.Flags().StringVar(&extractAlgorithm, "algorithm", extract.AlgorithmEditDistance, "matching algorithm: edit-distance or hybrid")
	extractCmd.Flags().StringVar(&extractMode, "mode", string(extract.ModeNameOnly), "extraction mode: name-only or structured")
	extractCmd.Flags().Float64Var(&extractYTolerance, "y-tolerance", extract.DefaultYTolerance, "vertical grouping tolerance in pixels")
	_ = extractCmd.MarkFlagRequired("fragments")
	rootCmd.AddCommand(extractCmd)
}
