package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"uniform-prompt-studio/internal/catalog"
)

func newFacetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the filter values the catalog offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := catalog.LoadDir(cmd.Context(), root.catalogDir, catalog.Options{Logger: root.logger})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "catalog source: %s\n", loaded.Source)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(loaded.Catalog.Facets())
		},
	}
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var perChunk int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bootstrap the database files and chunked layout in the catalog directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := catalog.Migrate(root.catalogDir, catalog.MigrateOptions{
				UniformsPerChunk: perChunk,
				Logger:           root.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "uniform types:     %d\n", report.UniformTypes)
			fmt.Fprintf(out, "phrase categories: %d\n", report.PhraseCategories)
			fmt.Fprintf(out, "copied legacy:     %t\n", report.CopiedLegacy)
			fmt.Fprintf(out, "created empty db:  %t\n", report.CreatedEmpty)
			fmt.Fprintf(out, "created metadata:  %t\n", report.CreatedMetadata)
			fmt.Fprintf(out, "chunks written:    %d\n", report.CreatedChunks)
			return nil
		},
	}
	// --dir is an alias of --catalog-dir.
	cmd.Flags().StringVar(&root.catalogDir, "dir", "public", "directory to migrate")
	cmd.Flags().IntVar(&perChunk, "per-chunk", 0, "uniform types per chunk file (0 = one chunk)")
	return cmd
}
