package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kwlam/sitechat/internal/analytics"
	"github.com/kwlam/sitechat/internal/chat"
	"github.com/kwlam/sitechat/internal/composer"
	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/content"
	"github.com/kwlam/sitechat/internal/conversation"
	"github.com/kwlam/sitechat/internal/datasource"
	"github.com/kwlam/sitechat/internal/db"
	"github.com/kwlam/sitechat/internal/fetcher"
	"github.com/kwlam/sitechat/internal/llm"
	"github.com/kwlam/sitechat/internal/platforms"
	"github.com/kwlam/sitechat/internal/retention"
	"github.com/kwlam/sitechat/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sitechat server",
	Long:  `Starts the chat backend: widget endpoints, admin API and the retention schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if verbose {
			cfg.AI.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		dbPath := filepath.Join(cfg.Server.DataDir, "sitechat.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		// Stores.
		convStore := conversation.NewStore(database)
		sourceStore := datasource.NewStore(database)
		statsStore := analytics.NewStore(database)

		// Context assembly.
		pageFetcher := fetcher.New()
		external := fetcher.NewSourceContext(pageFetcher, sourceStore)

		cms := content.NewWordPressClient(cfg.Content.BaseURL)
		var commerce content.CommerceSource
		if cfg.Content.CommerceEnabled {
			commerce = cms
		}
		var sitemap *content.SitemapIndex
		if len(cfg.Content.SitemapURLs) > 0 {
			sitemap = content.NewSitemapIndex(cfg.Content.SitemapURLs)
		}
		harvester := content.NewHarvester(cms, commerce, sitemap, external, cfg.Harvest)

		// Completion.
		comp := composer.New(cfg)
		client := llm.NewClient(cfg)
		pipeline := chat.NewPipeline(convStore, statsStore, harvester, comp, client, cfg.Site.DefaultLocale)

		// HTTP surface.
		srv := server.New(cfg.Server, database)
		fp := conversation.IPFingerprinter{}
		r := srv.Router()
		chat.RegisterRoutes(r, pipeline, fp)
		chat.RegisterWebSocket(r, pipeline, fp)
		datasource.RegisterRoutes(r, sourceStore, pageFetcher, external)
		analytics.RegisterRoutes(r, statsStore)
		platforms.RegisterRoutes(r, cfg.Contact)

		// Retention schedule.
		janitor := retention.New(convStore, cfg.Retention.Days)
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("starting retention schedule: %w", err)
		}
		defer janitor.Stop()

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "sitechat v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Site: %s (%s)\n", cfg.Site.Name, cfg.Content.BaseURL)
		fmt.Fprintf(os.Stderr, "  Provider: %s\n", cfg.AI.Provider)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}
