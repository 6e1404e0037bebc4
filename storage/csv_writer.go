package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"fiverr-scraper/models"
)

// CSVWriter exports gig summaries to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	// Write header
	if err := w.Write([]string{
		"gig_id", "title", "seller", "seller_pro", "seller_level", "seller_country",
		"starting_price", "rating", "review_count", "delivery_days",
		"orders_in_queue", "category", "tags", "url",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteSummaries appends one row per gig summary. Optional fields are left
// empty rather than written as zeros.
func (c *CSVWriter) WriteSummaries(gigs []models.GigSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range gigs {
		rating := ""
		if g.Rating != nil {
			rating = strconv.FormatFloat(*g.Rating, 'f', 2, 64)
		}
		delivery := ""
		if g.DeliveryDays != nil {
			delivery = strconv.FormatFloat(*g.DeliveryDays, 'f', 1, 64)
		}
		queue := ""
		if g.QueueOrders != nil {
			queue = strconv.Itoa(*g.QueueOrders)
		}

		row := []string{
			strconv.FormatInt(g.ID, 10),
			g.Title,
			g.Seller,
			strconv.FormatBool(g.SellerPro),
			g.SellerLevel,
			g.SellerCountry,
			strconv.FormatFloat(g.StartingPrice, 'f', 2, 64),
			rating,
			strconv.Itoa(g.ReviewCount),
			delivery,
			queue,
			g.Category,
			strings.Join(g.Tags, ";"),
			g.URL,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
