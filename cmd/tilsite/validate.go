package main

import (
	"context"
	"fmt"
	"io"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/tilsite/content"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every content file against the frontmatter schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store := content.NewDirStore(cfg.ContentDir, logger)
			_, problems, err := loadCollections(cmd.Context(), store, cmd.OutOrStdout(), logger)
			if err != nil {
				return err
			}
			if problems > 0 {
				return fmt.Errorf("%d invalid content file(s)", problems)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all content valid")
			return nil
		},
	}
}

// loadCollections loads every collection from store, printing one line per
// invalid file to w. It returns the valid records per collection and the
// number of invalid files.
func loadCollections(ctx context.Context, store *content.FSStore, w io.Writer, logger *log.Logger) (map[content.Collection][]content.Record, int, error) {
	valid := make(map[content.Collection][]content.Record, len(content.Collections))
	problems := 0
	for _, c := range content.Collections {
		results, err := store.Load(ctx, c)
		if err != nil {
			return nil, 0, err
		}
		for _, r := range results {
			if r.OK() {
				valid[c] = append(valid[c], r.Record)
				continue
			}
			problems++
			for _, p := range r.Problems {
				fmt.Fprintf(w, "%s: %s\n", r.Source, p)
			}
		}
		logger.Debugf("%s: %d file(s), %d valid", c, len(results), len(valid[c]))
	}
	return valid, problems, nil
}
