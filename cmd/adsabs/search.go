// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/adsabs/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the literature with a Solr query",
	Long: `Search runs a Solr-syntax query against the search service and streams
the matching records. Pagination is transparent: --max caps how many
records are printed in total.

Examples:
  adsabs search 'author:"Nevin, R." year:2015'
  adsabs search 'title:"dark energy"' --fl title,citation_count --sort "citation_count desc"
  adsabs search 'bibstem:ApJ year:2020' --max 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("fl", "", "fields to return (comma-separated)")
	searchCmd.Flags().String("sort", "", `sort order, e.g. "date desc"`)
	searchCmd.Flags().Int("start", 0, "offset into the result set")
	searchCmd.Flags().Int("max", 20, "maximum number of records to print")
	searchCmd.Flags().String("save", "", "write the results to a YAML query file")
	searchCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	defer a.Close()

	opts := searchOptsFromFlags(cmd)
	stream := a.search.SearchRaw(args[0], opts)

	records, err := stream.All(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d of %d matching records\n", len(records), stream.NumFound())

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, args[0], opts, stream.NumFound(), records); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved query file:", path)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return printRecords(records, jsonOutput)
}

func searchOptsFromFlags(cmd *cobra.Command) search.Options {
	var opts search.Options
	if fl, _ := cmd.Flags().GetString("fl"); fl != "" {
		opts.Fields = strings.Split(fl, ",")
	}
	opts.Sort, _ = cmd.Flags().GetString("sort")
	opts.Start, _ = cmd.Flags().GetInt("start")
	opts.Rows, _ = cmd.Flags().GetInt("max")
	return opts
}

func printRecords(records []*search.Record, jsonOutput bool) error {
	if jsonOutput {
		docs := make([]map[string]any, len(records))
		for i, r := range records {
			doc := make(map[string]any)
			for _, f := range r.Fields() {
				v, _ := r.Get(context.Background(), f)
				doc[f] = v
			}
			docs[i] = doc
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(records) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for _, r := range records {
		title := ""
		if titles, err := r.GetStrings(context.Background(), "title"); err == nil && len(titles) > 0 {
			title = titles[0]
		}
		fmt.Printf("%-19s  %s\n", r.Bibcode(), title)
	}
	return nil
}
