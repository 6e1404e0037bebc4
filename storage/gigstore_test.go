package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fiverr-scraper/models"
	"fiverr-scraper/utils"
)

func newTestStore(t *testing.T) *GigStore {
	t.Helper()
	return NewGigStore(t.TempDir(), utils.NewLogger(false))
}

func testRecord(id int64, seller string) *models.GigRecord {
	rating := 4.8
	return &models.GigRecord{
		ID:            id,
		Title:         "I will design a logo",
		Seller:        seller,
		Rating:        &rating,
		ReviewCount:   120,
		StartingPrice: 45,
		Tags:          []string{"logo", "branding"},
		URL:           "https://www.fiverr.com/some/gig",
		ScrapedAt:     time.Now().UTC(),
	}
}

func TestGigStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save("logo design", testRecord(101, "alice"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "gig_101_alice.json" {
		t.Errorf("file name = %q; want gig_101_alice.json", filepath.Base(path))
	}

	records, skipped, err := store.LoadAll(store.KeywordDir("logo design"))
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d; want 0", skipped)
	}
	if len(records) != 1 {
		t.Fatalf("loaded %d records; want 1", len(records))
	}

	got := records[0]
	if got.ID != 101 || got.Seller != "alice" {
		t.Errorf("identity = (%d, %q); want (101, alice)", got.ID, got.Seller)
	}
	if got.Rating == nil || *got.Rating != 4.8 {
		t.Errorf("rating pointer did not survive round trip: %v", got.Rating)
	}
	if got.StartingPrice != 45 {
		t.Errorf("starting price = %v; want 45", got.StartingPrice)
	}
}

func TestGigStoreSanitizesKeywordAndSeller(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord(7, `bad/seller:name`)
	path, err := store.Save(`logo/design?`, rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Base(filepath.Dir(path)) != "logo_design" {
		t.Errorf("keyword dir = %q; want logo_design", filepath.Base(filepath.Dir(path)))
	}
	if filepath.Base(path) != "gig_7_bad_seller_name.json" {
		t.Errorf("file name = %q; want gig_7_bad_seller_name.json", filepath.Base(path))
	}
}

func TestGigStoreOverwritesSameGig(t *testing.T) {
	store := newTestStore(t)

	first := testRecord(55, "bob")
	first.StartingPrice = 10
	if _, err := store.Save("logos", first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := testRecord(55, "bob")
	second.StartingPrice = 99
	if _, err := store.Save("logos", second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	records, _, err := store.LoadAll(store.KeywordDir("logos"))
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("loaded %d records; want 1 after overwrite", len(records))
	}
	if records[0].StartingPrice != 99 {
		t.Errorf("starting price = %v; want 99 (latest write wins)", records[0].StartingPrice)
	}
}

func TestGigStoreDistinctSellersDoNotCollide(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save("logos", testRecord(55, "alice")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save("logos", testRecord(55, "bob")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, _, err := store.LoadAll(store.KeywordDir("logos"))
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("loaded %d records; want 2", len(records))
	}
}

func TestGigStoreLoadAllSkipsBadFiles(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save("logos", testRecord(1, "alice")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	dir := store.KeywordDir("logos")

	// Corrupt record, record missing required fields, and an unrelated file.
	if err := os.WriteFile(filepath.Join(dir, "gig_2_broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gig_3_empty.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	records, skipped, err := store.LoadAll(dir)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("loaded %d records; want 1", len(records))
	}
	if skipped != 2 {
		t.Errorf("skipped = %d; want 2 (corrupt + invalid, unrelated file ignored)", skipped)
	}
}

func TestGigStoreLoadAllMissingDir(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.LoadAll(filepath.Join(store.Root(), "nope")); err == nil {
		t.Error("expected error for missing directory, got nil")
	}
}
