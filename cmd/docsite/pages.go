package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the loaded pages and their sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := newSite(cfg, newLogger(cfg))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tTITLE\tSECTIONS\tBLOCKS")
		for _, p := range s.Library().Pages() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.Path, p.Title.Title, len(p.Sections), len(p.Blocks))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
