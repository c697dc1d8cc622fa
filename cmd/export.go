package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptforge/internal/export"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the prompt library as a static HTML site",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		outputDir := exportDir
		if outputDir == "" {
			outputDir = filepath.Join(app.cfg.DataDir, "export")
		}

		n, err := export.NewExporter(app.library, outputDir).Export(context.Background())
		if err != nil {
			return fmt.Errorf("exporting library: %w", err)
		}

		fmt.Printf("Exported %d prompt(s) to %s\n", n, outputDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "output directory (default <data_dir>/export)")
	rootCmd.AddCommand(exportCmd)
}
