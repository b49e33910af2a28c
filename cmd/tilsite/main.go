// Command tilsite serves and builds the blog/TIL feed.
package main

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/tilsite"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tilsite",
		Short: "Blog & TIL site with an RSS feed",
		Long: `tilsite serves the RSS feed and sitemap of a personal blog and
"today I learned" collection.

Content lives in <content_dir>/blog and <content_dir>/til as markdown files
with YAML frontmatter (title, description, author, publishDate, tags).

Settings come from tilsite.yaml (or --config) and TILSITE_* environment
variables, e.g. TILSITE_URL=https://example.com.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tilsite.yaml)")

	root.AddCommand(
		serveCmd(),
		buildCmd(),
		validateCmd(),
		importCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the tilsite version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tilsite %s\n", version)
			},
		},
	)
	return root
}

// loadConfig reads the site configuration and returns a logger at the
// configured level.
func loadConfig() (tilsite.SiteConfig, *log.Logger, error) {
	cfg, err := tilsite.LoadConfig(cfgFile)
	if err != nil {
		return tilsite.SiteConfig{}, nil, err
	}
	logger := log.New("tilsite")
	logger.SetHeader("${time_rfc3339} ${level} ${prefix}")
	lvl, err := tilsite.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return tilsite.SiteConfig{}, nil, err
	}
	logger.SetLevel(lvl)
	return cfg, logger, nil
}
