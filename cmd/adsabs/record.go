// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/adsabs/pkg/types"
	"github.com/pdiddy/adsabs/search"
)

var recordCmd = &cobra.Command{
	Use:   "record <bibcode> [field...]",
	Short: "Show fields of a single record",
	Long: `Record fetches one record by bibcode and prints the requested fields.
With no fields it prints title, author, year, and citation_count. Each
requested field is fetched on demand; asking for many fields issues one
search request per field.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().Bool("json", false, "output the record as JSON")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	defer a.Close()

	bibcode := types.Bibcode(args[0])
	rec, err := search.NewRecord(a.search, bibcode)
	if err != nil {
		return err
	}

	fields := args[1:]
	if len(fields) == 0 {
		fields = []string{"title", "author", "year", "citation_count"}
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := rec.Get(context.Background(), f)
		if err != nil {
			return fmt.Errorf("field %s: %w", f, err)
		}
		out[f] = v
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, f := range fields {
		fmt.Printf("%-16s %v\n", f+":", out[f])
	}
	return nil
}
