package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwachang/gonggo/internal/config"
	"github.com/hwachang/gonggo/internal/crawler"
)

var (
	crawlOutput   string
	crawlDelay    time.Duration
	crawlMaxPages int
	crawlMetadata string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl announcement listings and download PDF attachments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrawl(cmd.Context())
	},
}

func init() {
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "Download directory (default from DOWNLOAD_DIR)")
	crawlCmd.Flags().DurationVar(&crawlDelay, "delay", 0, "Pause between list pages (default from CRAWL_DELAY)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", -1, "Stop after this many list pages, 0 = all (default from CRAWL_MAX_PAGES)")
	crawlCmd.Flags().StringVar(&crawlMetadata, "metadata", "", "Write crawled announcement metadata to this JSON file")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(ctx context.Context) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Load()
	opts := crawler.Options{
		ListURL:   cfg.ListURL,
		DetailURL: cfg.DetailURL,
		OutputDir: cfg.DownloadDir,
		Delay:     cfg.CrawlDelay,
		MaxPages:  cfg.CrawlMaxPages,
	}
	if crawlOutput != "" {
		opts.OutputDir = crawlOutput
	}
	if crawlDelay > 0 {
		opts.Delay = crawlDelay
	}
	if crawlMaxPages >= 0 {
		opts.MaxPages = crawlMaxPages
	}

	announcements, err := crawler.New(opts, log).Crawl(ctx)
	if err != nil {
		return err
	}
	log.Info("crawl finished", "announcements", len(announcements))

	if crawlMetadata != "" {
		f, err := os.Create(crawlMetadata)
		if err != nil {
			return err
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(announcements); err != nil {
			return err
		}
	}
	return nil
}
