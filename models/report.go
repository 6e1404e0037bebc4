package models

import "time"

// KeywordReport is the full analysis output for one keyword directory,
// written as a single JSON document.
type KeywordReport struct {
	Keyword      string       `json:"keyword"`
	AnalysisID   string       `json:"analysis_id"`
	AnalyzedAt   time.Time    `json:"analyzed_at"`
	SkippedFiles int          `json:"skipped_files,omitempty"`
	Stats        KeywordStats `json:"statistics"`
	Gigs         []GigSummary `json:"gigs"`
}

// KeywordStats aggregates the per-keyword statistics. Sections computed over
// optional fields are nil when no record carried a usable value.
type KeywordStats struct {
	TotalGigs         int            `json:"total_gigs"`
	ProSellers        int            `json:"pro_sellers"`
	ProSellerFraction float64        `json:"pro_seller_fraction"`
	Pricing           *PricingStats  `json:"pricing,omitempty"`
	Ratings           *RatingStats   `json:"ratings,omitempty"`
	Delivery          *DeliveryStats `json:"delivery,omitempty"`
	Queue             *QueueStats    `json:"orders_in_queue,omitempty"`
	SellerLevels      map[string]int `json:"seller_levels,omitempty"`
	Categories        map[string]int `json:"categories,omitempty"`
	TopTags           []TagCount     `json:"top_tags"`
}

// PricingStats summarizes starting prices across the keyword.
type PricingStats struct {
	Average float64     `json:"average"`
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
	Median  float64     `json:"median"`
	Ranges  PriceRanges `json:"ranges"`
}

// PriceRanges buckets gigs by starting price in whole currency units.
type PriceRanges struct {
	Under50 int `json:"under_50"`
	From50  int `json:"50_to_100"`
	From100 int `json:"100_to_250"`
	From250 int `json:"250_to_500"`
	Over500 int `json:"over_500"`
}

// RatingStats summarizes gig ratings on the 0..5 scale.
type RatingStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// DeliveryStats summarizes fastest-package delivery times in days.
type DeliveryStats struct {
	AverageDays float64 `json:"average_days"`
	MinDays     float64 `json:"min_days"`
	MaxDays     float64 `json:"max_days"`
}

// QueueStats summarizes orders currently in sellers' queues.
type QueueStats struct {
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Total   int     `json:"total"`
}

// TagCount is one entry of the ranked tag table.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// GigSummary is the per-gig projection embedded in a report, a trimmed view
// of the stored record for quick scanning and CSV export.
type GigSummary struct {
	ID            int64    `json:"gig_id"`
	Title         string   `json:"title"`
	Seller        string   `json:"seller"`
	SellerPro     bool     `json:"seller_pro"`
	SellerLevel   string   `json:"seller_level,omitempty"`
	SellerCountry string   `json:"seller_country,omitempty"`
	StartingPrice float64  `json:"starting_price"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
	DeliveryDays  *float64 `json:"delivery_days,omitempty"`
	QueueOrders   *int     `json:"orders_in_queue,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	URL           string   `json:"url"`
}
