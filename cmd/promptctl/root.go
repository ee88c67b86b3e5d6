package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"uniform-prompt-studio/internal/config"
	"uniform-prompt-studio/internal/logging"
)

type rootOptions struct {
	catalogDir string
	logLevel   string
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "promptctl",
		Short:        "Compose uniform photography prompts and manage the uniform catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("catalog-dir") && !cmd.Flags().Changed("dir") {
				opts.catalogDir = cfg.CatalogDir
			}
			// Logs go to stderr so stdout stays pipeable.
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.AppEnv, opts.logLevel, cfg.Debug)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.catalogDir, "catalog-dir", "d", "public", "directory holding the uniform database files")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newGenerateCmd(opts),
		newFacetsCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}
