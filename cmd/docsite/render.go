package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var outDir string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export every page as static HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := newSite(cfg, newLogger(cfg))
		if err != nil {
			return err
		}

		res, err := s.Export(cmd.Context(), outDir)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages and %d assets to %s\n", res.Pages, res.Assets, outDir)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&outDir, "out", "o", "public", "output directory")
	rootCmd.AddCommand(renderCmd)
}
