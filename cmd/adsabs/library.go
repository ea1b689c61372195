// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage document libraries",
	Long: `Library lists, creates, and edits server-side document libraries.
Document edits are applied as a minimal difference: only added and removed
bibcodes are sent.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your libraries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		defer a.Close()

		libs, err := a.biblib.List(context.Background())
		if err != nil {
			return err
		}
		for _, lib := range libs {
			visibility := "private"
			if lib.Public {
				visibility = "public"
			}
			fmt.Printf("%-24s  %-8s  %4d docs  %s\n", lib.ID, visibility, lib.NumDocuments, lib.Name)
		}
		return nil
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a library's documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		defer a.Close()

		lib, err := a.biblib.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d documents)\n", lib.Name, len(lib.Documents))
		for _, code := range lib.Documents {
			fmt.Println(code)
		}
		return nil
	},
}

var libraryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		defer a.Close()

		description, _ := cmd.Flags().GetString("description")
		public, _ := cmd.Flags().GetBool("public")
		lib := a.biblib.NewLibrary(args[0], description, public)
		if err := lib.Save(context.Background()); err != nil {
			return err
		}
		fmt.Println("Created library:", lib.ID)
		return nil
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <id> <bibcode...>",
	Short: "Add documents to a library",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return editLibrary(cmd, args, true) },
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <id> <bibcode...>",
	Short: "Remove documents from a library",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return editLibrary(cmd, args, false) },
}

func editLibrary(cmd *cobra.Command, args []string, add bool) error {
	a := newApp(cmd)
	defer a.Close()

	lib, err := a.biblib.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	if add {
		if err := lib.Add(args[1:]...); err != nil {
			return err
		}
	} else {
		lib.Remove(args[1:]...)
	}
	if err := lib.Save(context.Background()); err != nil {
		return err
	}
	fmt.Printf("%s now has %d documents\n", lib.Name, lib.NumDocuments)
	return nil
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		defer a.Close()

		lib, err := a.biblib.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if err := lib.Delete(context.Background()); err != nil {
			return err
		}
		fmt.Println("Deleted library:", args[0])
		return nil
	},
}

func init() {
	libraryCreateCmd.Flags().String("description", "", "library description")
	libraryCreateCmd.Flags().Bool("public", false, "make the library public")

	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, libraryCreateCmd,
		libraryAddCmd, libraryRemoveCmd, libraryDeleteCmd)
	rootCmd.AddCommand(libraryCmd)
}
