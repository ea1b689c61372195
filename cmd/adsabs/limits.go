// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/adsabs/search"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show rate-limit accounting",
	Long: `Limits issues a minimal search request to refresh the rate-limit
headers, then prints the per-service allowance: total limit, remaining
requests, and the reset time reported by the server.`,
	RunE: runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
}

func runLimits(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	defer a.Close()

	// A one-row probe is the cheapest way to see current headers.
	stream := a.search.SearchRaw("star", search.Options{Rows: 1})
	if _, err := stream.Next(context.Background()); err != nil && !errors.Is(err, search.Done) {
		return err
	}

	snapshot := a.transport.Limits().Snapshot()
	if len(snapshot) == 0 {
		fmt.Println("No rate-limit headers observed yet.")
		return nil
	}

	services := make([]string, 0, len(snapshot))
	for s := range snapshot {
		services = append(services, s)
	}
	sort.Strings(services)

	fmt.Printf("%-10s  %8s  %10s  %s\n", "Service", "Limit", "Remaining", "Reset")
	for _, s := range services {
		rl := snapshot[s]
		reset := ""
		if rl.Reset > 0 {
			reset = time.Unix(rl.Reset, 0).UTC().Format(time.RFC3339)
		}
		fmt.Printf("%-10s  %8d  %10d  %s\n", s, rl.Limit, rl.Remaining, reset)
	}
	return nil
}
