package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/tilsite"
)

func buildCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write rss.xml, sitemap.xml and robots.txt to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.CacheTTL = -1
			cfg.MetricsEnabled = false

			app := tilsite.New(cfg, tilsite.WithLogger(logger))
			if err := app.Init(); err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			rss, err := app.BuildFeed(ctx)
			if err != nil {
				return fmt.Errorf("build feed: %w", err)
			}
			sitemap, err := app.BuildSitemap(ctx)
			if err != nil {
				return fmt.Errorf("build sitemap: %w", err)
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			files := map[string][]byte{
				"rss.xml":     rss,
				"sitemap.xml": sitemap,
				"robots.txt":  []byte(app.RobotsTxt()),
			}
			for name, body := range files {
				p := filepath.Join(out, name)
				if err := os.WriteFile(p, body, 0o644); err != nil {
					return err
				}
				logger.Infof("wrote %s (%d bytes)", p, len(body))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	return cmd
}
