package models

import "time"

// GigRef is the lightweight reference to a gig as it appears on one
// search-results page. It carries just enough to fetch and identify the
// detail page; the full record is built from the detail page itself.
type GigRef struct {
	ID            int64
	URL           string
	Title         string
	Seller        string
	SellerLevel   string
	SellerRating  float64
	SellerCountry string
	SearchPrice   float64
}

// Package is one pricing tier of a gig (Basic, Standard or Premium; tiers
// past the third are named "Package N"). Prices are in whole currency units,
// delivery in days.
type Package struct {
	Name         string           `json:"name"`
	Title        string           `json:"title,omitempty"`
	Description  string           `json:"description,omitempty"`
	Price        float64          `json:"price"`
	DeliveryDays float64          `json:"delivery_days,omitempty"`
	Revisions    int              `json:"revisions,omitempty"`
	ExtraFast    *ExtraFast       `json:"extra_fast_delivery,omitempty"`
	Features     []PackageFeature `json:"features,omitempty"`
}

// ExtraFast is a package's expedited-delivery upgrade. Duration stays in
// hours, the unit the marketplace quotes it in.
type ExtraFast struct {
	Available     bool    `json:"available"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Price         float64 `json:"price,omitempty"`
}

// PackageFeature is one row of a package's feature table.
type PackageFeature struct {
	Name     string  `json:"name"`
	Label    string  `json:"label,omitempty"`
	Type     string  `json:"type,omitempty"`
	Value    int     `json:"value,omitempty"`
	Included bool    `json:"included"`
	Price    float64 `json:"price,omitempty"`
}

// FAQ is one question/answer pair from a gig's FAQ section.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GigRecord is the normalized form of one scraped gig, the unit stored as a
// JSON file under the per-keyword directory. Pointer fields distinguish an
// absent value from a genuine zero.
type GigRecord struct {
	ID                   int64     `json:"gig_id"`
	Title                string    `json:"title"`
	Seller               string    `json:"seller"`
	SellerPro            bool      `json:"seller_pro"`
	SellerLevel          string    `json:"seller_level,omitempty"`
	SellerCountry        string    `json:"seller_country,omitempty"`
	SellerOneLiner       string    `json:"seller_one_liner,omitempty"`
	SellerMemberSince    string    `json:"seller_member_since,omitempty"`
	SellerResponseTime   int       `json:"seller_response_time,omitempty"`
	SellerRecentDelivery string    `json:"seller_recent_delivery,omitempty"`
	Rating               *float64  `json:"rating,omitempty"`
	ReviewCount          int       `json:"review_count"`
	StartingPrice        float64   `json:"starting_price"`
	Currency             string    `json:"currency,omitempty"`
	Packages             []Package `json:"packages"`
	DeliveryDays         *float64  `json:"delivery_days,omitempty"`
	QueueOrders          *int      `json:"orders_in_queue,omitempty"`
	CollectedCount       int       `json:"collected_count,omitempty"`
	Tags                 []string  `json:"tags"`
	Category             string    `json:"category,omitempty"`
	SubCategory          string    `json:"sub_category,omitempty"`
	Description          string    `json:"description,omitempty"`
	FAQs                 []FAQ     `json:"faqs,omitempty"`
	URL                  string    `json:"url"`
	SearchPrice          float64   `json:"search_price,omitempty"`
	ScrapedAt            time.Time `json:"scraped_at"`
}

// Valid reports whether the record carries the minimum fields every stored
// gig must have. Files that fail this check are skipped at load time.
func (g *GigRecord) Valid() bool {
	return g.ID > 0 && g.URL != ""
}
