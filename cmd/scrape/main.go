package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiverr-scraper/config"
	"fiverr-scraper/fetch"
	"fiverr-scraper/scraper/fiverr"
	"fiverr-scraper/storage"
	"fiverr-scraper/utils"
)

func main() {
	cfg := config.Load()

	pages := flag.Int("pages", cfg.PagesToScrape, "search result pages to walk")
	delay := flag.Duration("delay", time.Duration(cfg.RequestDelayMs)*time.Millisecond, "minimum delay between requests")
	output := flag.String("output", cfg.GigsOutputDir, "directory for per-keyword gig records")
	verbose := flag.Bool("v", cfg.Debug, "verbose logging")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: scrape [flags] <keyword>")
		fmt.Fprintln(os.Stderr, `example: scrape -pages 2 "logo design"`)
		flag.PrintDefaults()
		os.Exit(2)
	}
	keyword := flag.Arg(0)

	cfg.PagesToScrape = *pages
	cfg.RequestDelayMs = int(*delay / time.Millisecond)
	cfg.GigsOutputDir = *output

	logger := utils.NewLogger(*verbose)
	logger.Info("=== Fiverr Gig Collector starting ===")
	logger.Info("Config — keyword: %q | pages: %d | mode: %s | concurrency: %d | delay: %v",
		keyword, cfg.PagesToScrape, cfg.FetchMode, cfg.MaxConcurrency, *delay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(fetch.Options{
		Mode:       fetch.Mode(cfg.FetchMode),
		RelayURL:   cfg.RelayURL,
		APIKey:     cfg.ScraperAPIKey,
		Render:     cfg.RelayRender,
		Timeout:    time.Duration(cfg.RequestTimeoutSec) * time.Second,
		MaxRetries: cfg.MaxRetries,
		ChromeBin:  cfg.ChromeBin,
	}, logger)
	defer client.Close()

	store := storage.NewGigStore(cfg.GigsOutputDir, logger)
	collector := fiverr.New(cfg, logger, client, store)

	result := collector.Collect(ctx, keyword)

	if cfg.PostgresEnabled() && len(result.Records) > 0 {
		logger.Info("Mirroring %d record(s) to PostgreSQL...", len(result.Records))
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("PostgreSQL mirror unavailable: %v", err)
		} else {
			if err := pgWriter.Write(keyword, result.Records); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Records mirrored to PostgreSQL (table: gigs)")
			}
			pgWriter.Close()
		}
	}

	for _, f := range result.Failed {
		logger.Warn("Failed gig %d: %s (%s)", f.ID, f.URL, f.Reason)
	}

	fmt.Printf("\n  Run %s — attempted %d, stored %d, failed %d\n  Records → %s\n\n",
		result.RunID, result.Attempted, result.Stored, len(result.Failed),
		store.KeywordDir(keyword))

	if result.Stored == 0 {
		logger.Error("No gigs were stored. Exiting.")
		os.Exit(1)
	}
}
