package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fiverr-scraper/config"
	"fiverr-scraper/services"
	"fiverr-scraper/storage"
	"fiverr-scraper/utils"
)

func main() {
	cfg := config.Load()

	output := flag.String("output", cfg.AnalysisOutputDir, "directory for report files")
	csvExport := flag.Bool("csv", false, "also export gig summaries as CSV")
	verbose := flag.Bool("v", cfg.Debug, "verbose logging")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: analyze [flags] <keyword-dir> [<keyword-dir>...]")
		fmt.Fprintf(os.Stderr, "example: analyze %q\n", filepath.Join(cfg.GigsOutputDir, "logo design"))
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := utils.NewLogger(*verbose)
	logger.Info("=== Fiverr Keyword Analyzer starting ===")

	store := storage.NewGigStore(cfg.GigsOutputDir, logger)
	analyzer := services.NewAnalyzer(logger, store)

	reports, _ := analyzer.Analyze(flag.Args(), *output)
	for _, dr := range reports {
		analyzer.Print(dr.Report)

		if *csvExport {
			csvPath := strings.TrimSuffix(dr.Path, ".json") + ".csv"
			w, err := storage.NewCSVWriter(csvPath)
			if err != nil {
				logger.Error("CSV export failed: %v", err)
			} else {
				if err := w.WriteSummaries(dr.Report.Gigs); err != nil {
					logger.Error("CSV write failed: %v", err)
				} else {
					logger.Info("Summaries exported to %s", csvPath)
				}
				w.Close()
			}
		}
	}

	if len(reports) == 0 {
		logger.Error("No reports were written. Exiting.")
		os.Exit(1)
	}

	fmt.Printf("\n  Done. %d report(s) → %s\n\n", len(reports), *output)
}
