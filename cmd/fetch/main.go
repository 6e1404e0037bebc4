package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"fiverr-scraper/config"
	"fiverr-scraper/fetch"
	"fiverr-scraper/storage"
	"fiverr-scraper/utils"
)

func main() {
	cfg := config.Load()

	target := flag.String("url", "", "fiverr page to fetch")
	format := flag.String("format", "both", "what to save: json, html or both")
	output := flag.String("output", "output", "output directory")
	verbose := flag.Bool("v", cfg.Debug, "verbose logging")
	flag.Parse()

	if *target == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch -url <fiverr-url> [-format json|html|both] [-output dir]")
		fmt.Fprintln(os.Stderr, "example: fetch -url https://www.fiverr.com/search/gigs?query=logo")
		flag.PrintDefaults()
		os.Exit(2)
	}
	switch *format {
	case "json", "html", "both":
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q — use json, html or both\n", *format)
		os.Exit(2)
	}

	logger := utils.NewLogger(*verbose)
	logger.Info("=== Fiverr Page Fetcher starting ===")
	logger.Info("Config — url: %s | mode: %s | format: %s", *target, cfg.FetchMode, *format)

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

	wantJSON := *format == "json" || *format == "both"

	resp, err := client.Fetch(ctx, *target, wantJSON)
	if err != nil {
		logger.Error("Fetch failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Fetched — status %d, %d bytes of HTML", resp.Status, len(resp.HTML))

	if wantJSON && resp.PropsErr != nil {
		logger.Error("Page carries no embedded state: %v", resp.PropsErr)
		os.Exit(1)
	}

	if err := os.MkdirAll(*output, 0755); err != nil {
		logger.Error("Failed to create output dir: %v", err)
		os.Exit(1)
	}
	base := fileStem(*target)

	if *format == "html" || *format == "both" {
		htmlPath := filepath.Join(*output, base+".html")
		if err := os.WriteFile(htmlPath, []byte(resp.HTML), 0644); err != nil {
			logger.Error("Failed to write HTML: %v", err)
			os.Exit(1)
		}
		logger.Info("HTML saved to %s", htmlPath)
	}

	if wantJSON {
		data, err := json.MarshalIndent(resp.Props, "", "  ")
		if err != nil {
			logger.Error("Failed to encode embedded state: %v", err)
			os.Exit(1)
		}
		jsonPath := filepath.Join(*output, base+".json")
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			logger.Error("Failed to write JSON: %v", err)
			os.Exit(1)
		}
		logger.Info("Embedded state saved to %s (%d top-level keys)", jsonPath, resp.Props.Len())
	}

	fmt.Printf("\n  Done. Output → %s\n\n", *output)
}

// fileStem derives an output file stem from the last URL path segment.
func fileStem(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "fiverr_data"
	}
	seg := path.Base(strings.TrimSuffix(u.Path, "/"))
	if seg == "" || seg == "." || seg == "/" {
		return "fiverr_data"
	}
	return storage.SanitizeName(seg)
}
