// Package caches implements the caches subcommand: list and delete
// registered cache metadata.
package caches

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/storage"
)

// Command builds the caches subcommand.
func Command(deps *common.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caches",
		Short: "Manage registered cache metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand(deps))
	cmd.AddCommand(deleteCommand(deps))

	return cmd
}

func listCommand(deps *common.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered caches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := deps.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			renderTable(records)

			return nil
		},
	}
}

func deleteCommand(deps *common.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <alias>",
		Short: "Delete a cache record by alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			deps.Logger.Info("Cache deleted", "alias", args[0])

			return nil
		},
	}
}

func renderTable(records []storage.CacheRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Alias", "Cache ID", "Tokens", "Source", "Created", "Expires"})

	for _, record := range records {
		expires := "-"
		if record.ExpiresAt != nil {
			expires = record.ExpiresAt.Format("2006-01-02 15:04")
		}

		t.AppendRow(table.Row{
			record.Alias,
			record.CacheID,
			record.TokenCount,
			record.Source,
			record.CreatedAt.Format("2006-01-02 15:04"),
			expires,
		})
	}

	t.Render()
}
