package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionhero/docsite/docs"
	"github.com/actionhero/docsite/internal/config"
	"github.com/actionhero/docsite/internal/site"
	"github.com/actionhero/docsite/pkg/content"
	"github.com/actionhero/docsite/pkg/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsite",
	Short: "Live documentation site for Actionhero",
	Long: `docsite serves sectioned documentation pages. Each page has a sidebar
of sections kept in sync with the browser over a websocket, and prev/next
link buttons. Pages can also be exported as static HTML.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	opts := []logging.LoggerOption{
		logging.WithLevel(logging.ParseLevel(cfg.Log.Level)),
		logging.WithOutput(os.Stderr),
	}
	if cfg.Log.JSON {
		opts = append(opts, logging.WithJSON())
	}
	logger := logging.NewSlogLogger(opts...)
	logging.SetDefault(logger)
	return logger
}

// contentFS returns the pages and static trees: content_dir/pages and
// content_dir/static when configured, the embedded docs otherwise.
func contentFS(cfg *config.Config) (pages, static fs.FS, err error) {
	root := docs.FS()
	if cfg.ContentDir != "" {
		root = os.DirFS(cfg.ContentDir)
	}
	pages, err = fs.Sub(root, "pages")
	if err != nil {
		return nil, nil, err
	}
	static, err = fs.Sub(root, "static")
	if err != nil {
		return nil, nil, err
	}
	return pages, static, nil
}

func newSite(cfg *config.Config, logger logging.Logger) (*site.Site, error) {
	pages, static, err := contentFS(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening content: %w", err)
	}
	lib, err := content.Load(pages, content.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}
	return site.New(cfg, lib,
		site.WithStatic(static),
		site.WithLogger(logger),
		site.WithVersion(Version),
	), nil
}
