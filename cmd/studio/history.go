package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/domain"
	"studio/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage recent generations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			entries := store.List(cmd.Context())
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No generations yet.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTYLE\tCREATED\tPROMPT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Style, e.CreatedAt.Format(time.RFC3339), e.Prompt)
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			entry, ok := store.Get(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], domain.ErrNotFound)
			}
			printEntry(a.out, entry)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a generation from history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			store.Remove(cmd.Context(), args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every generation from history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			store.Clear(cmd.Context())
			return nil
		},
	}

	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write history to a zip archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			entries := store.List(cmd.Context())
			archive, err := history.Export(entries)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, archive, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			fmt.Fprintf(a.out, "Exported %d generations to %s\n", len(entries), outPath)
			return nil
		},
	}
	export.Flags().StringVarP(&outPath, "out", "o", "history.zip", "Archive path")

	cmd.AddCommand(list, show, remove, clearCmd, export)
	return cmd
}

func printEntry(w io.Writer, e domain.GenerationResult) {
	fmt.Fprintf(w, "ID:      %s\n", e.ID)
	style := string(e.Style)
	if info, ok := e.Style.Info(); ok {
		style = info.Label
	}
	fmt.Fprintf(w, "Style:   %s\n", style)
	fmt.Fprintf(w, "Prompt:  %s\n", e.Prompt)
	fmt.Fprintf(w, "Image:   %s\n", e.ImageURL)
	fmt.Fprintf(w, "Created: %s\n", e.CreatedAt.Format(time.RFC3339))
}
