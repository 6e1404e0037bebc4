package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fiverr-scraper/models"
	"fiverr-scraper/storage"
	"fiverr-scraper/utils"
)

// topTagLimit caps the ranked tag table in a report.
const topTagLimit = 20

// ErrNoData means a keyword directory held no valid gig records.
var ErrNoData = errors.New("no valid gig records found")

// RecordLoader reads stored gig records from a keyword directory.
type RecordLoader interface {
	LoadAll(dir string) ([]*models.GigRecord, int, error)
}

// Analyzer computes per-keyword statistics over stored gig records and
// writes one report file per keyword.
type Analyzer struct {
	logger *utils.Logger
	loader RecordLoader
}

// NewAnalyzer creates an Analyzer reading records through the given loader.
func NewAnalyzer(logger *utils.Logger, loader RecordLoader) *Analyzer {
	return &Analyzer{logger: logger, loader: loader}
}

// AnalyzeDir loads every record in dir, generates the report and writes it
// under outDir. It fails with ErrNoData when the directory holds no valid
// records; unparsable files are skipped and surfaced in the report instead.
func (a *Analyzer) AnalyzeDir(dir, outDir string) (*models.KeywordReport, string, error) {
	keyword := filepath.Base(filepath.Clean(dir))
	a.logger.Info("[analyzer] Analyzing %q (%s)", keyword, dir)

	records, skipped, err := a.loader.LoadAll(dir)
	if err != nil {
		return nil, "", err
	}
	if skipped > 0 {
		a.logger.Warn("[analyzer] Skipped %d unparsable file(s) in %s", skipped, dir)
	}
	if len(records) == 0 {
		return nil, "", fmt.Errorf("%s: %w", dir, ErrNoData)
	}

	report := a.Generate(keyword, records, skipped)

	path, err := a.WriteReport(report, outDir)
	if err != nil {
		return nil, "", err
	}
	a.logger.Info("[analyzer] Report for %q written to %s", keyword, path)
	return report, path, nil
}

// DirReport pairs one analyzed keyword directory with its report and the
// path the report was written to.
type DirReport struct {
	Dir    string
	Report *models.KeywordReport
	Path   string
}

// DirFailure records a keyword directory that could not be analyzed.
type DirFailure struct {
	Dir string
	Err error
}

// Analyze runs AnalyzeDir over each keyword directory in turn. A directory
// that fails, including one empty enough to yield ErrNoData, is reported in
// the failure list and never stops the rest of the batch.
func (a *Analyzer) Analyze(dirs []string, outDir string) ([]DirReport, []DirFailure) {
	var reports []DirReport
	var failed []DirFailure
	for _, dir := range dirs {
		report, path, err := a.AnalyzeDir(dir, outDir)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				a.logger.Warn("[analyzer] %s: no valid gig records — skipping", dir)
			} else {
				a.logger.Error("[analyzer] %s: %v", dir, err)
			}
			failed = append(failed, DirFailure{Dir: dir, Err: err})
			continue
		}
		reports = append(reports, DirReport{Dir: dir, Report: report, Path: path})
	}
	return reports, failed
}

// Generate computes the full report for one keyword. Optional fields that
// are absent on a record stay out of that statistic's denominator.
func (a *Analyzer) Generate(keyword string, records []*models.GigRecord, skipped int) *models.KeywordReport {
	report := &models.KeywordReport{
		Keyword:      keyword,
		AnalysisID:   uuid.New().String(),
		AnalyzedAt:   time.Now().UTC(),
		SkippedFiles: skipped,
		Stats:        models.KeywordStats{TopTags: []models.TagCount{}},
		Gigs:         make([]models.GigSummary, 0, len(records)),
	}
	if len(records) == 0 {
		return report
	}

	stats := &report.Stats
	stats.TotalGigs = len(records)

	var prices, ratings, deliveries []float64
	var queues []int
	levels := make(map[string]int)
	categories := make(map[string]int)
	tagCounts := make(map[string]int)
	tagFirstSeen := make(map[string]int)

	for _, g := range records {
		if g.SellerPro {
			stats.ProSellers++
		}
		if g.StartingPrice > 0 {
			prices = append(prices, g.StartingPrice)
		}
		if g.Rating != nil && *g.Rating > 0 {
			ratings = append(ratings, *g.Rating)
		}
		if g.DeliveryDays != nil && *g.DeliveryDays > 0 {
			deliveries = append(deliveries, *g.DeliveryDays)
		}
		if g.QueueOrders != nil {
			queues = append(queues, *g.QueueOrders)
		}
		if g.SellerLevel != "" {
			levels[g.SellerLevel]++
		}
		if g.Category != "" {
			categories[g.Category]++
		}
		for _, tag := range g.Tags {
			if tag == "" {
				continue
			}
			if _, seen := tagCounts[tag]; !seen {
				tagFirstSeen[tag] = len(tagFirstSeen)
			}
			tagCounts[tag]++
		}

		report.Gigs = append(report.Gigs, summarize(g))
	}

	stats.ProSellerFraction = round2(float64(stats.ProSellers) / float64(stats.TotalGigs))

	if len(prices) > 0 {
		sort.Float64s(prices)
		p := &models.PricingStats{
			Min:     round2(prices[0]),
			Max:     round2(prices[len(prices)-1]),
			Average: round2(mean(prices)),
			Median:  round2(median(prices)),
		}
		for _, v := range prices {
			switch {
			case v < 50:
				p.Ranges.Under50++
			case v < 100:
				p.Ranges.From50++
			case v < 250:
				p.Ranges.From100++
			case v < 500:
				p.Ranges.From250++
			default:
				p.Ranges.Over500++
			}
		}
		stats.Pricing = p
	}

	if len(ratings) > 0 {
		sort.Float64s(ratings)
		stats.Ratings = &models.RatingStats{
			Average: round2(mean(ratings)),
			Min:     round2(ratings[0]),
			Max:     round2(ratings[len(ratings)-1]),
		}
	}

	if len(deliveries) > 0 {
		sort.Float64s(deliveries)
		stats.Delivery = &models.DeliveryStats{
			AverageDays: round2(mean(deliveries)),
			MinDays:     round2(deliveries[0]),
			MaxDays:     round2(deliveries[len(deliveries)-1]),
		}
	}

	if len(queues) > 0 {
		q := &models.QueueStats{}
		for _, n := range queues {
			q.Total += n
			if n > q.Max {
				q.Max = n
			}
		}
		q.Average = round2(float64(q.Total) / float64(len(queues)))
		stats.Queue = q
	}

	if len(levels) > 0 {
		stats.SellerLevels = levels
	}
	if len(categories) > 0 {
		stats.Categories = categories
	}

	stats.TopTags = rankTags(tagCounts, tagFirstSeen)
	return report
}

// rankTags orders tags by frequency, breaking ties by first appearance
// across the records, and keeps the top entries.
func rankTags(counts map[string]int, firstSeen map[string]int) []models.TagCount {
	tags := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return firstSeen[tags[i].Tag] < firstSeen[tags[j].Tag]
	})
	if len(tags) > topTagLimit {
		tags = tags[:topTagLimit]
	}
	return tags
}

func summarize(g *models.GigRecord) models.GigSummary {
	return models.GigSummary{
		ID:            g.ID,
		Title:         g.Title,
		Seller:        g.Seller,
		SellerPro:     g.SellerPro,
		SellerLevel:   g.SellerLevel,
		SellerCountry: g.SellerCountry,
		StartingPrice: g.StartingPrice,
		Rating:        g.Rating,
		ReviewCount:   g.ReviewCount,
		DeliveryDays:  g.DeliveryDays,
		QueueOrders:   g.QueueOrders,
		Tags:          g.Tags,
		Category:      g.Category,
		URL:           g.URL,
	}
}

// WriteReport writes the report under outDir as <keyword>_analysis.json.
// The file is written to a temp name first and renamed into place, so a
// crash mid-write never leaves a truncated report behind.
func (a *Analyzer) WriteReport(report *models.KeywordReport, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("analyzer: create output dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analyzer: encode report: %w", err)
	}

	final := filepath.Join(outDir, storage.SanitizeName(report.Keyword)+"_analysis.json")
	tmp, err := os.CreateTemp(outDir, "."+filepath.Base(final)+".tmp-")
	if err != nil {
		return "", fmt.Errorf("analyzer: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("analyzer: write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("analyzer: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("analyzer: replace report: %w", err)
	}
	return final, nil
}

// Print renders the report to the terminal.
func (a *Analyzer) Print(r *models.KeywordReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 KEYWORD ANALYSIS — %s\033[0m\n", r.Keyword)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Gigs analyzed : \033[1m%d\033[0m\n", r.Stats.TotalGigs)
	fmt.Printf("  Pro sellers   : \033[1m%d\033[0m (%.0f%%)\n", r.Stats.ProSellers, r.Stats.ProSellerFraction*100)
	if r.SkippedFiles > 0 {
		fmt.Printf("  Skipped files : \033[1;31m%d\033[0m\n", r.SkippedFiles)
	}
	fmt.Println()

	// Pricing
	fmt.Printf("\033[1;33m  Starting Prices\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if p := r.Stats.Pricing; p != nil {
		fmt.Printf("  Average : \033[1;32m$%.2f\033[0m\n", p.Average)
		fmt.Printf("  Median  : \033[1;32m$%.2f\033[0m\n", p.Median)
		fmt.Printf("  Range   : \033[1;32m$%.2f — $%.2f\033[0m\n", p.Min, p.Max)
		ranges := []struct {
			label string
			count int
		}{
			{"under $50 ", p.Ranges.Under50},
			{"$50–$100  ", p.Ranges.From50},
			{"$100–$250 ", p.Ranges.From100},
			{"$250–$500 ", p.Ranges.From250},
			{"over $500 ", p.Ranges.Over500},
		}
		for _, rg := range ranges {
			bar := strings.Repeat("█", rg.count)
			fmt.Printf("  %-12s %s (%d)\n", rg.label, bar, rg.count)
		}
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Ratings
	fmt.Printf("\033[1;33m  Ratings\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if rt := r.Stats.Ratings; rt != nil {
		fmt.Printf("  Average : \033[1;32m%.2f ★\033[0m (%.2f — %.2f)\n", rt.Average, rt.Min, rt.Max)
	} else {
		fmt.Printf("  No rated gigs found\n")
	}
	fmt.Println()

	// Delivery + queue
	fmt.Printf("\033[1;33m  Delivery & Demand\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if d := r.Stats.Delivery; d != nil {
		fmt.Printf("  Fastest delivery : avg \033[1m%.1f\033[0m days (%.1f — %.1f)\n", d.AverageDays, d.MinDays, d.MaxDays)
	} else {
		fmt.Printf("  No delivery data\n")
	}
	if q := r.Stats.Queue; q != nil {
		fmt.Printf("  Orders in queue  : avg \033[1m%.1f\033[0m, max %d, total %d\n", q.Average, q.Max, q.Total)
	}
	fmt.Println()

	// Top tags
	fmt.Printf("\033[1;33m  Top Tags\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Stats.TopTags) == 0 {
		fmt.Printf("  No tags found\n")
	} else {
		shown := r.Stats.TopTags
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for i, tc := range shown {
			fmt.Printf("  \033[1m%2d.\033[0m %-30s (%d)\n", i+1, truncate(tc.Tag, 28), tc.Count)
		}
	}

	// Seller levels
	if len(r.Stats.SellerLevels) > 0 {
		fmt.Println()
		fmt.Printf("\033[1;33m  Seller Levels\033[0m\n")
		fmt.Printf("  %s\n", thin)
		type levelCount struct {
			level string
			count int
		}
		var lv []levelCount
		for level, cnt := range r.Stats.SellerLevels {
			lv = append(lv, levelCount{level, cnt})
		}
		sort.Slice(lv, func(i, j int) bool { return lv[i].count > lv[j].count })
		for _, l := range lv {
			bar := strings.Repeat("█", l.count)
			fmt.Printf("  %-24s %s (%d)\n", truncate(l.level, 22), bar, l.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// median expects sorted input. Even-length inputs average the two middle
// values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
