package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	adapterhandler "docs-portal/internal/adapter/handler"
	"docs-portal/internal/site"

	"docs-portal/config"
	"docs-portal/utils/logger"

	"github.com/spf13/cobra"
)

func newPrerenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Write every doc as static HTML",
		Long: `Render every doc in the sidebar without a browser. Diagrams are left as
placeholders and the navbar shows the login and register links; the
hydration script fills both in once the page is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			logger.Init(false)
			return prerender(config.LoadContent(), out, slog.Default())
		},
	}
	cmd.Flags().String("out", "build", "output directory")
	return cmd
}

// prerender writes <out>/docs/<id>.html for every doc.
func prerender(content config.Content, out string, l *slog.Logger) error {
	siteCfg, library, err := loadSite(content)
	if err != nil {
		return err
	}
	renderer, err := adapterhandler.NewRenderer()
	if err != nil {
		return err
	}

	layout := adapterhandler.NewLayout(siteCfg, nil, l)
	docs := adapterhandler.NewDocsHandler(layout, library, renderer)

	dir := filepath.Join(out, "docs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	for _, id := range siteCfg.DocIDs() {
		path := filepath.Join(dir, id+".html")
		if err := writePage(path, func(f *os.File) error { return docs.Prerender(f, id) }); err != nil {
			return err
		}
		l.Info("prerendered doc", "doc", id, "path", path)
	}
	return nil
}

func writePage(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// loadSite reads the site config and every doc it references.
func loadSite(content config.Content) (*site.Config, *site.Library, error) {
	siteCfg, err := site.LoadConfig(content.SiteConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("load site config: %w", err)
	}
	fsys, err := site.DocsFS(content.DocsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open docs: %w", err)
	}
	library, err := site.LoadLibrary(fsys, siteCfg.DocIDs())
	if err != nil {
		return nil, nil, err
	}
	return siteCfg, library, nil
}
