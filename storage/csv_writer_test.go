package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"fiverr-scraper/models"
)

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "gigs.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter failed: %v", err)
	}

	rating := 4.5
	queue := 3
	gigs := []models.GigSummary{
		{ID: 1, Title: "gig one", Seller: "alice", StartingPrice: 20, Rating: &rating, QueueOrders: &queue, Tags: []string{"a", "b"}, URL: "https://www.fiverr.com/1"},
		{ID: 2, Title: "gig two", Seller: "bob", StartingPrice: 35, URL: "https://www.fiverr.com/2"},
	}
	if err := w.WriteSummaries(gigs); err != nil {
		t.Fatalf("WriteSummaries failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d; want 3 (header + 2)", len(rows))
	}
	if rows[0][0] != "gig_id" {
		t.Errorf("header starts with %q; want gig_id", rows[0][0])
	}
	if rows[1][7] != "4.50" {
		t.Errorf("rating cell = %q; want 4.50", rows[1][7])
	}
	if rows[2][7] != "" {
		t.Errorf("absent rating cell = %q; want empty", rows[2][7])
	}
	if rows[1][12] != "a;b" {
		t.Errorf("tags cell = %q; want a;b", rows[1][12])
	}
}
