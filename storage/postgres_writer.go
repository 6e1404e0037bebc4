package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"fiverr-scraper/models"
)

// PostgresWriter mirrors collected gig records into PostgreSQL. The files
// on disk stay the source of truth; the table exists for ad-hoc SQL over
// past runs.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS gigs (
			gig_id          BIGINT        NOT NULL,
			seller          TEXT          NOT NULL,
			keyword         TEXT          NOT NULL DEFAULT '',
			title           TEXT          NOT NULL DEFAULT '',
			seller_pro      BOOLEAN       NOT NULL DEFAULT FALSE,
			seller_level    TEXT          NOT NULL DEFAULT '',
			seller_country  TEXT          NOT NULL DEFAULT '',
			starting_price  NUMERIC(10,2) NOT NULL DEFAULT 0,
			rating          NUMERIC(4,2),
			review_count    INTEGER       NOT NULL DEFAULT 0,
			delivery_days   NUMERIC(6,2),
			orders_in_queue INTEGER,
			category        TEXT          NOT NULL DEFAULT '',
			url             TEXT          NOT NULL,
			scraped_at      TIMESTAMPTZ   NOT NULL,
			PRIMARY KEY (gig_id, seller)
		);

		CREATE INDEX IF NOT EXISTS idx_gigs_keyword ON gigs(keyword);
		CREATE INDEX IF NOT EXISTS idx_gigs_price   ON gigs(starting_price);
		CREATE INDEX IF NOT EXISTS idx_gigs_rating  ON gigs(rating);
	`)
	return err
}

// Write batch-upserts the records under the given keyword. Re-scraped gigs
// replace their previous row, matching the on-disk overwrite semantics.
func (pw *PostgresWriter) Write(keyword string, records []*models.GigRecord) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(keyword, records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(keyword string, batch []*models.GigRecord) error {
	const cols = 15
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, g := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var rating, delivery sql.NullFloat64
		if g.Rating != nil {
			rating = sql.NullFloat64{Float64: *g.Rating, Valid: true}
		}
		if g.DeliveryDays != nil {
			delivery = sql.NullFloat64{Float64: *g.DeliveryDays, Valid: true}
		}
		var queue sql.NullInt64
		if g.QueueOrders != nil {
			queue = sql.NullInt64{Int64: int64(*g.QueueOrders), Valid: true}
		}

		valueArgs = append(valueArgs,
			g.ID, g.Seller, keyword, g.Title, g.SellerPro, g.SellerLevel,
			g.SellerCountry, g.StartingPrice, rating, g.ReviewCount,
			delivery, queue, g.Category, g.URL, g.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO gigs (gig_id, seller, keyword, title, seller_pro, seller_level,
			seller_country, starting_price, rating, review_count,
			delivery_days, orders_in_queue, category, url, scraped_at)
		VALUES %s
		ON CONFLICT (gig_id, seller) DO UPDATE SET
			keyword         = EXCLUDED.keyword,
			title           = EXCLUDED.title,
			seller_pro      = EXCLUDED.seller_pro,
			seller_level    = EXCLUDED.seller_level,
			seller_country  = EXCLUDED.seller_country,
			starting_price  = EXCLUDED.starting_price,
			rating          = EXCLUDED.rating,
			review_count    = EXCLUDED.review_count,
			delivery_days   = EXCLUDED.delivery_days,
			orders_in_queue = EXCLUDED.orders_in_queue,
			category        = EXCLUDED.category,
			url             = EXCLUDED.url,
			scraped_at      = EXCLUDED.scraped_at
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
