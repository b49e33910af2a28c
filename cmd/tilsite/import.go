package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/tilsite/content"
)

func importCmd() *cobra.Command {
	var dbPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Index the markdown collections into the SQLite database",
		Long: `import parses every file under content_dir and replaces each collection
in the SQLite index with the valid records. Invalid files abort the import
unless --force is given, in which case they are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.DatabasePath
			}
			if dbPath == "" {
				return errors.New("no database: set database_path or pass --db")
			}

			store := content.NewDirStore(cfg.ContentDir, logger)
			valid, problems, err := loadCollections(cmd.Context(), store, cmd.ErrOrStderr(), logger)
			if err != nil {
				return err
			}
			if problems > 0 && !force {
				return fmt.Errorf("%d invalid content file(s), nothing imported", problems)
			}

			db, err := content.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, c := range content.Collections {
				if err := db.ReplaceCollection(cmd.Context(), c, valid[c]); err != nil {
					return fmt.Errorf("import %s: %w", c, err)
				}
				logger.Infof("imported %d %s record(s) into %s", len(valid[c]), c, dbPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides database_path)")
	cmd.Flags().BoolVar(&force, "force", false, "skip invalid files instead of aborting")
	return cmd
}
