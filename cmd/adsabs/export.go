// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/adsabs/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <format> <bibcode...>",
	Short: "Export citations in a chosen format",
	Long: `Export renders one or more bibcodes through the citation export service
and prints the formatted text. Run with --list to see the accepted formats.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("list", false, "list accepted formats and exit")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		fmt.Println(strings.Join(export.Formats(), "\n"))
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: adsabs export <format> <bibcode...>")
	}

	a := newApp(cmd)
	defer a.Close()

	text, err := a.export.Export(context.Background(), args[0], args[1:]...)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <bibcode...>",
	Short: "Compute citation metrics for a set of bibcodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		defer a.Close()

		m, err := a.export.Metrics(context.Background(), args...)
		if err != nil {
			return err
		}
		fmt.Printf("papers:          %d\n", m.BasicStats.NumberOfPapers)
		fmt.Printf("total citations: %d\n", m.CitationStats.TotalCitations)
		fmt.Printf("mean citations:  %.2f\n", m.CitationStats.MeanCitations)
		fmt.Printf("h-index:         %d\n", m.Indicators.H)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
